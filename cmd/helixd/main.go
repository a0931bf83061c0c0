package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	blobfs "github.com/helixlab/helix/pkg/blob/fs"
	blobgcs "github.com/helixlab/helix/pkg/blob/gcs"
	kcx "github.com/helixlab/helix/pkg/configs/extras"
	kcf "github.com/helixlab/helix/pkg/configs/frontend"
	"github.com/helixlab/helix/pkg/datasets/finisher"
	kpg "github.com/helixlab/helix/pkg/db/postgres"
	"github.com/helixlab/helix/pkg/echoutil"
	"github.com/helixlab/helix/pkg/trainsvc"
	"github.com/helixlab/helix/pkg/utils/filewatch"
	"github.com/labstack/echo/v4"
)

func main() {
	configPath := flag.String("config-path", "", "config file path")
	extraConfigPath := flag.String("extra-apis-config", "", "path to extra api config file")
	loglevel := flag.String("loglevel", "info", "log level. debug|info|warn|error|off")
	pcert := flag.String("cert", "", "certification file for TLS")
	pkey := flag.String("certkey", "", "key of certification file for TLS")
	schemaRepo := flag.String("schema-repo", os.Getenv("HELIX_SCHEMA"), "schema repository path")
	flag.Parse()

	// exit after other deferred cleanups.
	exit := 0
	defer func() { os.Exit(exit) }()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	conf, err := kcf.LoadFrontendConfig(*configPath)
	if err != nil {
		log.Fatalf("can not read configration: %s", err)
	}

	extraApis := kcx.Config{}
	if *extraConfigPath != "" {
		x, err := kcx.Load(*extraConfigPath)
		if err != nil {
			log.Fatalf("can not read configration: %s", err)
		}
		extraApis = x

		// quit to restart when the file is updated.
		wctx, wcancel, err := filewatch.UntilModifyContext(ctx, *extraConfigPath)
		if err != nil {
			log.Fatalf("can not watch configration: %s", err)
		}
		defer wcancel()
		ctx = wctx
	}

	if *schemaRepo == "" {
		*schemaRepo = conf.SchemaRepository
	}
	db, err := kpg.New(ctx, conf.DBURI, kpg.WithSchemaRepository(*schemaRepo))
	if err != nil {
		log.Fatalf("can not connect database: %s", err)
	}
	defer db.Close()
	if *schemaRepo != "" {
		if err := db.Schema().Upgrade(ctx); err != nil {
			log.Fatalf("can not upgrade schema: %s", err)
		}
		// quit to restart when a newer schema comes.
		sctx, scancel := db.Schema().Context(ctx)
		defer scancel()
		ctx = sctx
	}

	training, err := trainsvc.New(conf.Training.URL, conf.Training.Timeout)
	if err != nil {
		log.Fatalf("training.url is invalid: %s", err)
	}
	proxyClient := &http.Client{Timeout: conf.Training.Timeout}

	server := NewServer(*loglevel)

	fin := finisher.New(db.Datasets(), conf.Datasets.ProcessingDelay, server.Logger)
	defer fin.Stop()

	deps := Deps{
		Datasets:   db.Datasets(),
		Models:     db.Models(),
		BlobPrefix: conf.Blob.PublicURL,
		Training:   training,
		Proxy: func(c echo.Context, url string) error {
			return echoutil.ProxyWith(proxyClient, c, url)
		},
		Finisher:          fin,
		AllowedExtensions: conf.Datasets.AllowedExtensions,
		Extras:            extraApis,
	}

	switch conf.Blob.Driver {
	case kcf.BlobDriverGCS:
		store, err := blobgcs.New(ctx, conf.Blob.Bucket, conf.Blob.PublicURL)
		if err != nil {
			log.Fatalf("can not connect blob store: %s", err)
		}
		defer store.Close()
		deps.Blob = store
	default:
		store, err := blobfs.OnDisk(conf.Blob.Root, conf.Blob.PublicURL)
		if err != nil {
			log.Fatalf("can not open blob store: %s", err)
		}
		deps.Blob = store
		deps.BlobHandler = store.Handler()
	}

	if err := Mount(server, deps); err != nil {
		log.Fatalf("can not mount handlers: %s", err)
	}
	for _, r := range server.Routes() {
		server.Logger.Debugf("- mount handler: %s %s", r.Method, r.Path)
	}

	if err := serve(ctx, server, ":"+conf.ServerPort, *pcert, *pkey); err != nil {
		exit = 1
	}
}

// serve runs server until ctx is done or the server stops.
func serve(ctx context.Context, server *echo.Echo, addr string, cert string, key string) error {
	ch := make(chan error, 1)
	go func() {
		defer close(ch)
		var err error
		if cert != "" && key != "" {
			err = server.StartTLS(addr, cert, key)
		} else {
			err = server.Start(addr)
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			ch <- err
		}
	}()

	var stopped error
	select {
	case <-ctx.Done():
		server.Logger.Infof("context has been done: %s, cause: %s", ctx.Err(), context.Cause(ctx))
	case err := <-ch:
		if err != nil {
			server.Logger.Error("server stops with error:", err)
			stopped = err
		}
	}

	server.Logger.Info("shutting down...")
	qctx, qcancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer qcancel()
	if err := server.Shutdown(qctx); err != nil {
		server.Logger.Errorf("shutdown with error: %s", err)
		return errors.Join(stopped, err)
	}
	return stopped
}
