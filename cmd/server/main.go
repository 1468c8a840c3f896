package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	"github.com/unclebandit/jobreach-backend/internal/cache"
	"github.com/unclebandit/jobreach-backend/internal/config"
	"github.com/unclebandit/jobreach-backend/internal/controller"
	"github.com/unclebandit/jobreach-backend/internal/credential"
	"github.com/unclebandit/jobreach-backend/internal/db"
	"github.com/unclebandit/jobreach-backend/internal/discovery"
	"github.com/unclebandit/jobreach-backend/internal/feed"
	"github.com/unclebandit/jobreach-backend/internal/mailer"
	"github.com/unclebandit/jobreach-backend/internal/queue"
	"github.com/unclebandit/jobreach-backend/internal/repository"
	"github.com/unclebandit/jobreach-backend/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ No .env file found, relying on OS environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	conn, err := db.Connect(cfg.DB.URL)
	if err != nil {
		log.Fatalf("failed to connect to DB: %v", err)
	}
	if err := db.RunMigrations(cfg.DB.URL, cfg.DB.MigrationsDir); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}
	log.Println("✅ Connected to database")

	redisStore, err := cache.NewRedisStore(cfg.Redis.URL)
	if err != nil {
		log.Fatalf("failed to create redis store: %v", err)
	}
	if err := redisStore.Ping(context.Background()); err != nil {
		log.Fatalf("failed to ping redis: %v", err)
	}
	log.Println("✅ Connected to redis")

	q, err := queue.NewAMQPQueue(cfg.AMQP.URL)
	if err != nil {
		log.Fatalf("failed to connect to RabbitMQ: %v", err)
	}
	defer q.Close()

	campaignRepo := &repository.CampaignRepository{DB: conn}
	leadRepo := &repository.LeadRepository{DB: conn}
	credentialRepo := &repository.CredentialRepository{DB: conn}

	mailClient := mailer.NewHTTPClient(cfg.Mail.BaseURL, cfg.Mail.ClientID, cfg.Mail.RedirectURL, cfg.Mail.Timeout)

	// The worker process writes leads; the hub+listener pair makes those
	// changes visible to SSE clients of this process without polling.
	hub := feed.NewHub()
	listener, err := feed.NewListener(cfg.DB.URL, hub)
	if err != nil {
		log.Fatalf("failed to start feed listener: %v", err)
	}
	go listener.Run(context.Background())

	credentialManager := &credential.Manager{
		Grants:              credentialRepo,
		Sessions:            redisStore,
		Provider:            mailClient,
		InactivityThreshold: cfg.Session.InactivityThreshold,
	}

	campaignService := &service.CampaignService{
		CampaignRepo: campaignRepo,
		LeadRepo:     leadRepo,
		Discovery:    &discovery.Publisher{Queue: q},
	}
	cartService := &service.CartService{
		Store: redisStore,
		Leads: leadRepo,
	}
	dispatchService := &service.DispatchService{
		Carts:       redisStore,
		Leads:       leadRepo,
		Credentials: credentialManager,
		Mailer:      mailClient,
	}

	campaignController := &controller.CampaignController{CampaignService: campaignService}
	leadController := &controller.LeadController{LeadRepo: leadRepo, Hub: hub}
	credentialController := &controller.CredentialController{Manager: credentialManager}
	cartController := &controller.CartController{CartService: cartService, Credentials: credentialManager}
	dispatchController := &controller.DispatchController{DispatchService: dispatchService}

	r := chi.NewRouter()

	r.Post("/campaigns", campaignController.CreateCampaign)
	r.Get("/campaigns", campaignController.ListCampaigns)
	r.Get("/campaigns/{id}", campaignController.GetCampaign)
	r.Put("/campaigns/{id}", campaignController.UpdateCampaign)
	r.Delete("/campaigns/{id}", campaignController.DeleteCampaign)

	r.Get("/leads", leadController.ListLeads)
	r.Get("/leads/feed", leadController.Feed)

	r.Post("/credential/connect", credentialController.Connect)
	r.Get("/credential/callback", credentialController.Callback)
	r.Get("/credential/status", credentialController.Status)
	r.Post("/credential/refresh", credentialController.Refresh)
	r.Post("/credential/session", credentialController.ConfirmSession)
	r.Delete("/credential/session", credentialController.DisconnectView)

	r.Get("/cart", cartController.ListCart)
	r.Post("/cart/items", cartController.AddItem)
	r.Delete("/cart/items/{leadID}", cartController.RemoveItem)
	r.Delete("/cart", cartController.ClearCart)

	r.Post("/dispatch", dispatchController.Dispatch)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Println("🚀 Server running on", addr)
	log.Fatal(http.ListenAndServe(addr, r))
}
