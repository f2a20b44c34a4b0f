package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/SCPrime/ai-Trader-sub001/pkg/health"
	"github.com/SCPrime/ai-Trader-sub001/pkg/journal"
	"github.com/SCPrime/ai-Trader-sub001/pkg/models"
	"github.com/SCPrime/ai-Trader-sub001/pkg/orders"
	"github.com/SCPrime/ai-Trader-sub001/pkg/proxy"
)

type Server struct {
	submitter *orders.Submitter
	journal   *journal.Journal
	poller    *health.Poller
	client    proxy.Client
	hub       *Hub
	events    <-chan struct{}
	logger    *logrus.Logger
	port      string
}

func NewServer(submitter *orders.Submitter, jrnl *journal.Journal, poller *health.Poller, client proxy.Client, logger *logrus.Logger, port string) *Server {
	return &Server{
		submitter: submitter,
		journal:   jrnl,
		poller:    poller,
		client:    client,
		hub:       NewHub(logger),
		events:    jrnl.Subscribe(),
		logger:    logger,
		port:      port,
	}
}

func (s *Server) handler() http.Handler {
	mux := http.NewServeMux()

	// API endpoints
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/health/check", s.handleHealthCheck)
	mux.HandleFunc("/api/positions", s.handlePositions)
	mux.HandleFunc("/api/history", s.handleHistory)
	mux.HandleFunc("/api/orders", s.handleSubmitOrder)
	mux.HandleFunc("/api/orders/duplicate-test", s.handleDuplicateTest)
	mux.HandleFunc("/ws", s.hub.handleWS)

	// Enable CORS for the dashboard views
	return corsMiddleware(mux)
}

func (s *Server) Start() error {
	go s.hub.Run()
	go s.forwardJournalEvents()

	s.logger.Infof("Starting API server on port %s", s.port)
	return http.ListenAndServe(":"+s.port, s.handler())
}

// forwardJournalEvents pushes a notification to every connected dashboard
// view after each journal write, so open views refresh their history.
func (s *Server) forwardJournalEvents() {
	for range s.events {
		s.hub.Broadcast([]byte(`{"event":"orderHistoryUpdated"}`))
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.writeJSON(w, http.StatusOK, s.poller.Status())
}

func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.writeJSON(w, http.StatusOK, s.poller.Check(r.Context()))
}

func (s *Server) handlePositions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	positions, err := s.client.Positions(r.Context())
	if err != nil {
		s.logger.WithError(err).Error("Failed to fetch positions")
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	s.writeJSON(w, http.StatusOK, positions)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		records, err := s.journal.History(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if records == nil {
			records = []models.OrderRecord{}
		}
		s.writeJSON(w, http.StatusOK, records)

	case http.MethodDelete:
		if err := s.journal.Clear(r.Context()); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		s.writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleSubmitOrder(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req models.OrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	order := orders.NewOrderRequest(req.Symbol, req.Side, req.Qty, req.Type, req.LimitPrice)
	result, err := s.submitter.Submit(r.Context(), order)
	if err != nil {
		if errors.Is(err, orders.ErrInvalid) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		s.logger.WithError(err).Error("Order submission failed")
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleDuplicateTest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	result, err := s.submitter.DuplicateTest(r.Context())
	if err != nil {
		if errors.Is(err, orders.ErrNoSubmission) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		s.logger.WithError(err).Error("Duplicate test failed")
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.WithError(err).Error("Failed to encode JSON response")
	}
}
