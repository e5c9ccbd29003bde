package track

import (
	"bytes"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultReportDelay matches the original client: views are reported a
// beat after the route settles, so rapid redirects collapse into one.
const DefaultReportDelay = 500 * time.Millisecond

// Reporter posts page views to the analytics endpoint, fire-and-forget.
// Each Report call debounces the previous pending one; failures are
// swallowed after a debug log. It never blocks the caller.
type Reporter struct {
	endpoint string
	client   *http.Client
	delay    time.Duration
	log      *logrus.Entry

	mu      sync.Mutex
	pending *time.Timer
}

// NewReporter builds a reporter for endpoint (the full /api/track URL).
// An empty endpoint yields a disabled reporter whose Report is a no-op.
func NewReporter(endpoint string, delay time.Duration) *Reporter {
	if delay <= 0 {
		delay = DefaultReportDelay
	}
	return &Reporter{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 5 * time.Second},
		delay:    delay,
		log:      logrus.WithField("component", "track"),
	}
}

type reportPayload struct {
	PagePath  string `json:"pagePath"`
	PageTitle string `json:"pageTitle"`
	Referrer  string `json:"referrer"`
}

// Report schedules one page view. A newer Report before the delay elapses
// replaces the pending one.
func (r *Reporter) Report(path, title, referrer string) {
	if r.endpoint == "" {
		return
	}

	payload := reportPayload{PagePath: path, PageTitle: title, Referrer: referrer}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.pending != nil {
		r.pending.Stop()
	}
	r.pending = time.AfterFunc(r.delay, func() {
		r.send(payload)
	})
}

// Stop cancels any pending report.
func (r *Reporter) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.pending != nil {
		r.pending.Stop()
		r.pending = nil
	}
}

func (r *Reporter) send(p reportPayload) {
	body, err := json.Marshal(p)
	if err != nil {
		return
	}

	resp, err := r.client.Post(r.endpoint, "application/json", bytes.NewReader(body))
	if err != nil {
		r.log.WithField("path", p.PagePath).WithError(err).Debug("page tracking failed")
		return
	}
	resp.Body.Close()
}
