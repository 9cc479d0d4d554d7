// Package coordinator registers this console with the backend coordinator and polls its status.
package coordinator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/MuhamadAgungGumelar/support-console-be/internal/shared/metrics"
)

// DefaultPollInterval is how often the coordinator status is checked
const DefaultPollInterval = 30 * time.Second

// ServerStatus is the coordinator's answer to a status poll
type ServerStatus struct {
	Status           string    `json:"status"`
	Version          string    `json:"version,omitempty"`
	ConnectedClients int       `json:"connectedClients,omitempty"`
	CheckedAt        time.Time `json:"-"`
}

func (s ServerStatus) IsHealthy() bool {
	switch strings.ToLower(s.Status) {
	case "ok", "healthy", "running", "up":
		return true
	}
	return false
}

type registration struct {
	ClientID    string `json:"clientId"`
	CallbackURL string `json:"callbackUrl,omitempty"`
}

// Manager owns this console's registration with the coordinator
type Manager struct {
	baseURL      string
	clientID     string
	callbackURL  string
	pollInterval time.Duration
	client       *http.Client

	mu         sync.RWMutex
	registered bool
	lastStatus *ServerStatus
	lastErr    error

	cron    *cron.Cron
	entryID cron.EntryID
	polling bool
}

// NewManager builds a manager with a freshly generated client id.
// webhookPort is the raw configured value (bare port, host:port or URL).
func NewManager(baseURL, webhookPort string, pollInterval time.Duration) *Manager {
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}
	return &Manager{
		baseURL:      strings.TrimRight(baseURL, "/"),
		clientID:     "console-" + uuid.New().String(),
		callbackURL:  CallbackURL(ParsePort(webhookPort)),
		pollInterval: pollInterval,
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

func (m *Manager) ClientID() string    { return m.clientID }
func (m *Manager) CallbackURL() string { return m.callbackURL }

func (m *Manager) IsRegistered() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.registered
}

// Register announces the client id and callback URL
func (m *Manager) Register(ctx context.Context) error {
	err := m.post(ctx, "/clients/register", registration{
		ClientID:    m.clientID,
		CallbackURL: m.callbackURL,
	})
	if err != nil {
		return fmt.Errorf("failed to register client: %w", err)
	}

	m.mu.Lock()
	m.registered = true
	m.mu.Unlock()

	log.Info().Str("client_id", m.clientID).Str("callback", m.callbackURL).Msg("✅ Registered with coordinator")
	return nil
}

// Unregister removes this client from the coordinator
func (m *Manager) Unregister(ctx context.Context) error {
	if err := m.post(ctx, "/clients/unregister", registration{ClientID: m.clientID}); err != nil {
		return fmt.Errorf("failed to unregister client: %w", err)
	}

	m.mu.Lock()
	m.registered = false
	m.mu.Unlock()

	log.Info().Str("client_id", m.clientID).Msg("🔌 Unregistered from coordinator")
	return nil
}

// CheckStatus fetches the coordinator status once
func (m *Manager) CheckStatus(ctx context.Context) (ServerStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.baseURL+"/status", nil)
	if err != nil {
		return ServerStatus{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-Client-Id", m.clientID)

	resp, err := m.client.Do(req)
	if err != nil {
		m.recordStatus(nil, err)
		return ServerStatus{}, fmt.Errorf("status request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		err := fmt.Errorf("coordinator returned status %d: %s", resp.StatusCode, string(body))
		m.recordStatus(nil, err)
		return ServerStatus{}, err
	}

	var status ServerStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		m.recordStatus(nil, err)
		return ServerStatus{}, fmt.Errorf("failed to decode status: %w", err)
	}
	status.CheckedAt = time.Now()

	m.recordStatus(&status, nil)
	return status, nil
}

// LastStatus returns the latest successful poll and the latest poll error
func (m *Manager) LastStatus() (*ServerStatus, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.lastStatus == nil {
		return nil, m.lastErr
	}
	s := *m.lastStatus
	return &s, m.lastErr
}

// StartPolling schedules CheckStatus on the poll interval.
// Ticks are not serialised: a slow request may overlap the next one.
func (m *Manager) StartPolling() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.polling {
		return nil
	}

	c := cron.New(cron.WithSeconds())
	entryID, err := c.AddFunc(fmt.Sprintf("@every %s", m.pollInterval), m.poll)
	if err != nil {
		return fmt.Errorf("failed to schedule status poll: %w", err)
	}

	m.cron = c
	m.entryID = entryID
	m.polling = true
	c.Start()

	log.Info().Dur("interval", m.pollInterval).Msg("⏰ Coordinator status polling started")
	return nil
}

// StopPolling stops scheduling new polls; a tick already running finishes on its own
func (m *Manager) StopPolling() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.polling {
		return
	}
	m.cron.Remove(m.entryID)
	m.cron.Stop()
	m.cron = nil
	m.polling = false

	log.Info().Msg("⏰ Coordinator status polling stopped")
}

func (m *Manager) IsPolling() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.polling
}

func (m *Manager) poll() {
	ctx, cancel := context.WithTimeout(context.Background(), m.client.Timeout)
	defer cancel()

	status, err := m.CheckStatus(ctx)
	if err != nil {
		metrics.StatusPolls.WithLabelValues("error").Inc()
		log.Warn().Err(err).Msg("⚠️ Coordinator status poll failed")
		return
	}
	metrics.StatusPolls.WithLabelValues("ok").Inc()
	log.Debug().Str("status", status.Status).Msg("💓 Coordinator status")
}

func (m *Manager) recordStatus(status *ServerStatus, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if status != nil {
		m.lastStatus = status
	}
	m.lastErr = err
}

func (m *Manager) post(ctx context.Context, path string, payload interface{}) error {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+path, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusNoContent {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("coordinator returned status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}
