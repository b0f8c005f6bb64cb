package platform

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/errgroup"
)

// Status is the health of one platform at probe time.
type Status struct {
	Platform  string        `json:"platform"`
	Healthy   bool          `json:"healthy"`
	Latency   time.Duration `json:"latency_ms"`
	Error     string        `json:"error,omitempty"`
	CheckedAt time.Time     `json:"checked_at"`
}

// StatusChecker probes platform health endpoints concurrently and caches
// results so heartbeat cycles and API reads do not hammer the platforms.
type StatusChecker struct {
	clients []*Client
	cache   *expirable.LRU[string, Status]
	logger  *slog.Logger
}

// NewStatusChecker builds a checker over the given clients. ttl bounds how
// stale a cached probe may be; zero means 30 seconds.
func NewStatusChecker(clients []*Client, ttl time.Duration, logger *slog.Logger) *StatusChecker {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &StatusChecker{
		clients: clients,
		cache:   expirable.NewLRU[string, Status](32, nil, ttl),
		logger:  logger.With(slog.String("subsystem", "status")),
	}
}

// Check returns the health of every platform, probing only those whose
// cached result has expired.
func (sc *StatusChecker) Check(ctx context.Context) ([]Status, error) {
	results := make([]Status, len(sc.clients))
	g, ctx := errgroup.WithContext(ctx)
	for i, c := range sc.clients {
		if st, ok := sc.cache.Get(c.name); ok {
			results[i] = st
			continue
		}
		g.Go(func() error {
			st := sc.probe(ctx, c)
			sc.cache.Add(c.name, st)
			results[i] = st
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (sc *StatusChecker) probe(ctx context.Context, c *Client) Status {
	st := Status{Platform: c.name, CheckedAt: time.Now()}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+c.healthPath, nil)
	if err != nil {
		st.Error = err.Error()
		return st
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	st.Latency = time.Since(start)
	if err != nil {
		st.Error = err.Error()
		sc.logger.Warn("platform probe failed", slog.String("platform", c.name), slog.String("error", err.Error()))
		return st
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		st.Error = resp.Status
		return st
	}
	st.Healthy = true
	return st
}
