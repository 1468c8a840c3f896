package main

import (
	"encoding/json"
	"log"

	"github.com/joho/godotenv"

	"github.com/unclebandit/jobreach-backend/internal/config"
	"github.com/unclebandit/jobreach-backend/internal/db"
	"github.com/unclebandit/jobreach-backend/internal/discovery"
	"github.com/unclebandit/jobreach-backend/internal/model"
	"github.com/unclebandit/jobreach-backend/internal/queue"
	"github.com/unclebandit/jobreach-backend/internal/repository"
	"github.com/unclebandit/jobreach-backend/internal/service"
)

// The worker is the ingestion side of the pipeline: it consumes the
// discovery provider's asynchronous results and applies them to the lead
// table and campaign statuses. Lead writes emit change-feed notifications
// that the API process relays to connected clients.
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

	leadRepo := &repository.LeadRepository{DB: conn}
	campaignService := &service.CampaignService{
		CampaignRepo: &repository.CampaignRepository{DB: conn},
		LeadRepo:     leadRepo,
	}

	q, err := queue.NewAMQPQueue(cfg.AMQP.URL)
	if err != nil {
		log.Fatalf("failed to connect to RabbitMQ: %v", err)
	}
	defer q.Close()

	err = q.Subscribe(discovery.ResultsTopic, func(body []byte) error {
		return handleResult(body, leadRepo, campaignService)
	})
	if err != nil {
		log.Fatalf("failed to subscribe to %s: %v", discovery.ResultsTopic, err)
	}

	log.Println("Worker running, waiting for discovery results...")
	select {}
}

func handleResult(body []byte, leads repository.LeadRepositoryInterface, campaigns *service.CampaignService) error {
	var msg discovery.Result
	if err := json.Unmarshal(body, &msg); err != nil {
		log.Println("⚠️ invalid result message, dropping:", err)
		return nil // malformed input will not improve on retry
	}

	switch msg.Type {
	case discovery.MsgLeadInsert, discovery.MsgLeadUpdate:
		if msg.Lead == nil {
			log.Println("⚠️ lead message without lead payload, dropping")
			return nil
		}
		inserted, err := leads.Upsert(msg.Lead)
		if err != nil {
			return err
		}
		if inserted {
			log.Println("📩 new lead", msg.Lead.ID, "for", msg.Lead.OwnerEmail)
		}
		return nil
	case discovery.MsgLeadDelete:
		return leads.Delete(msg.LeadID)
	case discovery.MsgCampaignCompleted:
		return campaigns.MarkStatus(msg.CampaignID, model.CampaignCompleted)
	case discovery.MsgCampaignFailed:
		return campaigns.MarkStatus(msg.CampaignID, model.CampaignFailed)
	default:
		log.Println("⚠️ unknown result type, dropping:", msg.Type)
		return nil
	}
}
