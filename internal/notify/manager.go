package notify

import (
	"context"
	"sync"
	"time"

	"github.com/kumbirai/my-kasi-bet/internal/config"
	"github.com/kumbirai/my-kasi-bet/internal/notify/platforms"
	"github.com/kumbirai/my-kasi-bet/internal/store"

	"github.com/rs/zerolog/log"
)

type breakerState struct {
	consecutiveFailures int
	openUntil           time.Time
}

// Manager fans events out to every configured platform through a bounded
// queue and a fixed worker pool.
type Manager struct {
	cfg      config.NotifyConfig
	adapters map[string]platforms.Adapter
	lookup   PhoneLookup

	dispatchCh chan job
	retryQ     *retryQueue
	done       chan struct{}

	mu           sync.Mutex
	started      bool
	breakerByKey map[string]breakerState
}

// NewManager builds the WhatsApp adapter when credentials are configured and
// the Kafka adapter when brokers are configured.
func NewManager(cfg config.NotifyConfig, lookup PhoneLookup) (*Manager, error) {
	adapters := map[string]platforms.Adapter{}
	if cfg.WhatsAppPhoneNumberID != "" && cfg.WhatsAppAccessToken != "" {
		client := platforms.NewHTTPClient(cfg.RequestTimeout)
		adapters["whatsapp"] = platforms.NewWhatsAppAdapter(client, cfg.WhatsAppAPIURL, cfg.WhatsAppPhoneNumberID, cfg.WhatsAppAccessToken)
	}
	if len(cfg.KafkaBrokers) > 0 {
		k, err := platforms.NewKafkaAdapter(cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			return nil, err
		}
		adapters["kafka"] = k
	}
	return newManager(cfg, adapters, lookup), nil
}

// StoreLookup resolves phones from the users table.
func StoreLookup(st *store.Store) PhoneLookup {
	return func(ctx context.Context, userID string) (string, error) {
		u, err := st.GetUserByID(ctx, userID)
		if err != nil {
			return "", err
		}
		return u.PhoneNumber, nil
	}
}

func newManager(cfg config.NotifyConfig, adapters map[string]platforms.Adapter, lookup PhoneLookup) *Manager {
	if cfg.DispatchBuffer <= 0 {
		cfg.DispatchBuffer = 2048
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.RetryBase <= 0 {
		cfg.RetryBase = 500 * time.Millisecond
	}
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 3
	}
	if cfg.CircuitOpenDuration <= 0 {
		cfg.CircuitOpenDuration = 30 * time.Second
	}
	m := &Manager{
		cfg:          cfg,
		adapters:     adapters,
		lookup:       lookup,
		dispatchCh:   make(chan job, cfg.DispatchBuffer),
		done:         make(chan struct{}),
		breakerByKey: map[string]breakerState{},
	}
	m.retryQ = newRetryQueue(m.dispatchCh, m.done)
	return m
}

func (m *Manager) Start(ctx context.Context) error {
	if !m.cfg.Enabled {
		return nil
	}

	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return nil
	}
	m.started = true
	m.mu.Unlock()

	for i := 0; i < m.cfg.Workers; i++ {
		go m.worker(ctx)
	}
	go func() {
		<-ctx.Done()
		close(m.done)
		m.closeAdapters()
	}()
	log.Info().Int("workers", m.cfg.Workers).Int("platforms", len(m.adapters)).Msg("notify_started")
	return nil
}

// Notify queues ev for every platform. It never blocks: a full queue drops
// the event and counts it.
func (m *Manager) Notify(_ context.Context, ev Event) {
	if !m.cfg.Enabled {
		return
	}
	if ev.ID == "" {
		ev.ID = store.NewID()
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}
	for name := range m.adapters {
		if !m.enqueue(job{Platform: name, Event: ev}) {
			metricNotifyDroppedTotal.Add(1)
			log.Warn().Str("platform", name).Str("user_id", ev.UserID).Str("kind", ev.Kind).Msg("notify_dropped")
		}
	}
}

func (m *Manager) enqueue(j job) bool {
	select {
	case <-m.done:
		return false
	case m.dispatchCh <- j:
		metricNotifyQueuedTotal.Add(1)
		metricNotifyQueueLen.Set(int64(len(m.dispatchCh)))
		return true
	default:
		return false
	}
}

func (m *Manager) closeAdapters() {
	for _, a := range m.adapters {
		if c, ok := a.(interface{ Close() }); ok {
			c.Close()
		}
	}
}
