package main

import (
	"context"
	"net/http"

	"github.com/locvowork/xlsxsplit/internal/bootstrap"
	"github.com/locvowork/xlsxsplit/internal/logger"
)

func main() {
	ctx := context.Background()

	app := bootstrap.NewApp()
	if err := app.Initialize(ctx); err != nil {
		panic(err)
	}

	if err := app.Run(); err != nil && err != http.ErrServerClosed {
		logger.ErrorLog(ctx, "server stopped", err)
	}
}
