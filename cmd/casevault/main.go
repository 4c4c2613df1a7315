package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path"
	"time"

	"github.com/alecthomas/kong"
	"github.com/casevault/casevault/pkg/evidence"
	"github.com/casevault/casevault/pkg/server"
	"github.com/casevault/casevault/pkg/store/blobstore"
	"github.com/casevault/casevault/pkg/store/evidencestore"
	"github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"
)

var CLI struct {
	Serve struct {
		DataPath   string `name:"data-path" help:"Path to use for local state, containing the evidence_files directory and the evidence database." type:"path" default:"/var/lib/casevault"`
		DBDSN      string `name:"db-dsn" help:"Data source name of the evidence database. Defaults to a sqlite database inside data-path." type:"string" default:""`
		ListenAddr string `name:"listen-addr" help:"The address this service listens on" type:"string" default:"[::]:3000"`
	} `cmd:"" help:"Serve the evidence custody API."`
}

func main() {
	ctx := kong.Parse(&CLI)
	switch ctx.Command() {
	case "serve":
		// initialize blob store
		blobStore, err := blobstore.NewLocalStore(path.Join(CLI.Serve.DataPath, "evidence_files"))
		if err != nil {
			log.Fatal(err)
		}

		// initialize evidence record store
		dsn := CLI.Serve.DBDSN
		if dsn == "" {
			dsn = "file:" + path.Join(CLI.Serve.DataPath, "evidence.db")
		}
		evidenceStore, err := evidencestore.NewDatabaseStore(context.Background(), dsn)
		if err != nil {
			log.Fatal(err)
		}

		s := server.NewServer(evidence.NewService(blobStore, evidenceStore))

		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt)
		go func() {
			for range c {
				log.Info("Received Signal, shutting down…")
				blobStore.Close()
				evidenceStore.Close()
				os.Exit(1)
			}
		}()

		log.Printf("Starting Server at %v", CLI.Serve.ListenAddr)
		srv := &http.Server{
			Addr:         CLI.Serve.ListenAddr,
			Handler:      middleware.Logger(s.Handler),
			ReadTimeout:  50 * time.Second,
			WriteTimeout: 100 * time.Second,
			IdleTimeout:  150 * time.Second,
		}
		log.Fatal(srv.ListenAndServe())
	default:
		panic(ctx.Command())
	}
}
