package table

import (
	"sync"

	"github.com/apex/log"
	"github.com/apex/log/handlers/discard"

	"xdao.co/nametree/storage"
)

// Publisher replicates a registered record to additional locations.
// Implementations are fire-and-forget: Publish returns immediately and
// outcomes surface only through logging.
type Publisher interface {
	Publish(locators []string, key string, value []byte)
}

// AsyncPublisher pushes record bytes to extra CAS backends in the
// background. Registration never waits on it; a failed replica write is
// logged and retried only by a later registration of the same record.
type AsyncPublisher struct {
	Backends []storage.NamedCAS
	Log      log.Interface

	wg sync.WaitGroup
}

var _ Publisher = (*AsyncPublisher)(nil)

func (p *AsyncPublisher) Publish(locators []string, key string, value []byte) {
	if p == nil || len(p.Backends) == 0 {
		return
	}
	data := append([]byte(nil), value...)
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		for _, b := range p.Backends {
			if b.CAS == nil {
				continue
			}
			if _, err := b.CAS.Put(data); err != nil {
				p.logger().WithFields(log.Fields{
					"backend":  b.Name,
					"key":      key,
					"locators": locators,
				}).WithError(err).Warn("async publish failed")
			}
		}
	}()
}

// Wait blocks until all in-flight publishes finish. Tests and orderly
// shutdown use it; registration never does.
func (p *AsyncPublisher) Wait() { p.wg.Wait() }

func (p *AsyncPublisher) logger() log.Interface {
	if p.Log != nil {
		return p.Log
	}
	return &log.Logger{Handler: discard.Default, Level: log.InfoLevel}
}
