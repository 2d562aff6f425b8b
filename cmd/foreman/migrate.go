package main

import (
	"github.com/sirupsen/logrus"

	"github.com/cadenceworks/foreman/pkg/database/migrations"
)

const (
	docMigrate = `Apply database migrations`
)

type optsMigrate struct {
	optsGeneral
	optsDatabase

	Down bool `long:"down" description:"Roll back all migrations instead of applying them"`
}

func (c *optsMigrate) Execute(args []string) error {
	setupLogging(c.Debug)
	log := logrus.WithField("component", "migrate")

	if c.Down {
		return migrations.Down(c.url(), log)
	}
	return migrations.Up(c.url(), log)
}
