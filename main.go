// main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"foodgram/config"
	"foodgram/controllers"
	"foodgram/routes"
	"foodgram/shopping"
	"foodgram/store"
	"foodgram/utils"

	"github.com/gorilla/mux"
)

func main() {
	if err := run(); err != nil {
		utils.Logger.Error().Err(err).Msg("foodgram stopped")
		os.Exit(1)
	}
}

// run starts the server, or executes the command named in os.Args.
// Errors are returned so deferred cleanup runs before the process exits.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	utils.InitLogger(cfg.LogLevel, cfg.LogFormat, os.Stderr)

	// Set the JWT secret key
	utils.JwtKey = []byte(cfg.JWTSecret)
	controllers.RequestTimeout = cfg.RequestTimeout

	ctx := context.Background()

	// Connect to MongoDB
	client, err := utils.ConnectDB(ctx, cfg.MongoURI)
	if err != nil {
		return err
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			utils.Logger.Error().Err(err).Msg("failed to disconnect from database")
		}
	}()

	db := store.New(client.Database(cfg.MongoDB))
	if err := db.EnsureIndexes(ctx); err != nil {
		return err
	}

	if len(os.Args) > 1 {
		return runCommand(ctx, db, os.Args[1:])
	}

	var mailer controllers.Mailer
	if cfg.MailEnabled() {
		mailer = utils.NewEmailService(cfg.PostmarkToken, cfg.EmailSender)
	} else {
		utils.Logger.Info().Msg("POSTMARK_API_TOKEN or EMAIL_SENDER not set, shopping list email disabled")
	}

	// Initialize controllers
	router := mux.NewRouter()
	routes.RegisterRoutes(router, routes.Controllers{
		Catalog:  controllers.NewCatalogController(db),
		Recipe:   controllers.NewRecipeController(db, db.Carts, db.Favorites),
		Cart:     controllers.NewCartController(db, db.Carts, shopping.NewAggregator(db), mailer),
		Favorite: controllers.NewFavoriteController(db, db.Favorites),
		User:     controllers.NewUserController(db),
		Health:   controllers.NewHealthController(db),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		utils.Logger.Info().Str("port", cfg.Port).Msg("server is running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	select {
	case err := <-serveErr:
		return fmt.Errorf("server failed: %w", err)
	case <-stop:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

func runCommand(ctx context.Context, db *store.Store, args []string) error {
	switch args[0] {
	case "load-ingredients":
		if len(args) != 2 {
			return errors.New("usage: foodgram load-ingredients <file.json>")
		}
		n, err := loadIngredients(ctx, db, args[1])
		if err != nil {
			return fmt.Errorf("load-ingredients: %w", err)
		}
		utils.Logger.Info().Int("count", n).Str("file", args[1]).Msg("ingredients loaded")
		return nil
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}

// loadIngredients imports a JSON array of {"name", "measurement_unit"} objects
func loadIngredients(ctx context.Context, db *store.Store, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read %s: %w", path, err)
	}
	ingredients, err := parseIngredients(data)
	if err != nil {
		return 0, err
	}
	return db.InsertIngredients(ctx, ingredients)
}
