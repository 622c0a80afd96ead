package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"stickerboard/internal/blobstore"
	"stickerboard/internal/config"
	"stickerboard/internal/database"
	"stickerboard/internal/domain/account"
	"stickerboard/internal/domain/sticker"
	"stickerboard/internal/middleware"
	jwtsvc "stickerboard/internal/pkg/jwt"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.DSN)
	if err != nil {
		log.Fatal(err)
	}

	if err := db.AutoMigrate(&account.User{}, &sticker.Category{}, &sticker.Sticker{}); err != nil {
		log.Fatal(err)
	}

	blobs, err := blobstore.NewDisk(cfg.BlobDir)
	if err != nil {
		log.Fatal(err)
	}

	j := jwtsvc.New(cfg.JWTSecret, cfg.JWTTTL)

	accountService := account.NewService(account.NewRepository(db), j)
	accountHandler := account.NewHandler(accountService)

	stickerService := sticker.NewService(
		sticker.NewCategoryRepository(db),
		sticker.NewStickerRepository(db),
		blobs,
	)
	stickerHandler := sticker.NewHandler(stickerService, cfg.BaseURL)

	r := gin.Default()

	v1 := r.Group("/api/v1")
	{
		// public
		account.RegisterRoutes(v1, accountHandler)

		// protected
		protected := v1.Group("/")
		protected.Use(middleware.RequireAuth(j))
		{
			sticker.RegisterRoutes(protected, stickerHandler)
		}

		// sticker deletion answers 403/404 to anonymous callers, so it
		// sits behind optional auth instead of the 401-ing middleware
		maybeAuthed := v1.Group("/")
		maybeAuthed.Use(middleware.OptionalAuth(j))
		{
			sticker.RegisterDeleteRoute(maybeAuthed, stickerHandler)
		}
	}

	if err := r.Run(cfg.Addr); err != nil {
		log.Fatal(err)
	}
}
