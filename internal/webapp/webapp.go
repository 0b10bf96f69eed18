// Package webapp serves the server-rendered site: public pages, the auth
// flows, and the member dashboard. Handlers render full HTML documents;
// the only JSON endpoints are the token refresh and the health probe.
package webapp

import (
	"fmt"
	"log/slog"

	"github.com/ashokafoundation/website/internal/auth"
	"github.com/ashokafoundation/website/pkg/cookie"
	"github.com/ashokafoundation/website/pkg/queue"
)

const flashKey = "flash"

type Handlers struct {
	svc      *auth.Service
	sessions *auth.Sessions
	cookies  *cookie.Manager
	enqueuer *queue.Enqueuer
	rnd      *renderer
	log      *slog.Logger
}

func NewHandlers(
	svc *auth.Service,
	sessions *auth.Sessions,
	cookies *cookie.Manager,
	enqueuer *queue.Enqueuer,
	log *slog.Logger,
) (*Handlers, error) {
	if svc == nil || sessions == nil || cookies == nil {
		return nil, fmt.Errorf("webapp: missing dependency")
	}
	if log == nil {
		log = slog.Default()
	}
	rnd, err := newRenderer(log)
	if err != nil {
		return nil, err
	}
	return &Handlers{
		svc:      svc,
		sessions: sessions,
		cookies:  cookies,
		enqueuer: enqueuer,
		rnd:      rnd,
		log:      log,
	}, nil
}
