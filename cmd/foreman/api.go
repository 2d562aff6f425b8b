package main

import (
	"github.com/cadenceworks/foreman/pkg/api"
	"github.com/cadenceworks/foreman/pkg/api/http/server"
	"github.com/cadenceworks/foreman/pkg/database"
)

const (
	docAPI = `Run the API server`
)

type optsAPI struct {
	optsGeneral
	optsDatabase

	Addr    string `long:"addr" env:"ADDR" description:"Address to bind to" default:"localhost:8100"`
	TLSCert string `long:"cert" env:"CERT" description:"Path to TLS certificate"`
	TLSKey  string `long:"key" env:"KEY" description:"Path to TLS key"`

	StaticDir string `long:"static-dir" env:"STATIC_DIR" default:"" description:"Serve static files from this directory"`
}

func (c *optsAPI) Execute(args []string) error {
	// This main serves the foreman API over HTTP. It runs no worker loops;
	// immediate dispatch is rejected here since there is no executor to run
	// tasks inline. Run workers separately (or embed both in one process).
	setupLogging(c.Debug)

	db, err := database.NewPostgres(&database.Options{URL: c.url()})
	if err != nil {
		return err
	}

	svc, err := api.NewAPI(db, nil)
	if err != nil {
		return err
	}

	s := server.NewServer(&api.Options{
		Addr:    c.Addr,
		Static:  c.StaticDir,
		Debug:   c.Debug,
		TLSCert: c.TLSCert,
		TLSKey:  c.TLSKey,
	})
	return s.ServeForever(svc)
}
