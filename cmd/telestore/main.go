package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/telestore/telestore/internal/clock"
	"github.com/telestore/telestore/internal/config"
	"github.com/telestore/telestore/internal/server"
	"github.com/telestore/telestore/pkg/db"
	"github.com/telestore/telestore/pkg/log"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		log.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
