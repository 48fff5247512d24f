package tasks

import (
	log "github.com/sirupsen/logrus"

	"github.com/robfig/cron/v3"

	"web3radio/internal/queue"
	"web3radio/internal/storage"
	"web3radio/internal/ws"
)

// SweepExpiredEntries evicts queue entries that stopped heartbeating and
// notifies their rooms, exactly as if each had left on its own.
func SweepExpiredEntries(store *queue.Store) {
	evicted := store.SweepExpired()
	for _, ev := range evicted {
		ws.HubInstance.BroadcastWSMessage(ws.WSMessage{
			Event:  "member_expired",
			RoomID: ev.RoomID,
			Data: map[string]interface{}{
				"address":  ev.Entry.Address,
				"position": ev.Entry.Position,
			},
		})
	}
	if len(evicted) > 0 {
		log.Infof("ttl sweep evicted %d queue entries", len(evicted))
	}
}

// ReconcileListenerCounts re-derives every station's denormalized count from
// the authoritative member rows, repairing any drift.
func ReconcileListenerCounts() {
	err := storage.DB.Exec(`
		UPDATE stations s SET listener_count = COALESCE(m.cnt, 0)
		FROM (SELECT room_id, COUNT(*) AS cnt FROM queue_members WHERE deleted_at IS NULL GROUP BY room_id) m
		WHERE s.slug = m.room_id AND s.listener_count <> m.cnt`).Error
	if err != nil {
		log.Error("listener count reconciliation failed: ", err)
		return
	}
	err = storage.DB.Exec(`
		UPDATE stations SET listener_count = 0
		WHERE listener_count <> 0
		  AND slug NOT IN (SELECT DISTINCT room_id FROM queue_members WHERE deleted_at IS NULL)`).Error
	if err != nil {
		log.Error("listener count zeroing failed: ", err)
	}
}

// InitScheduler starts the background jobs: a TTL sweep every minute and a
// nightly counter reconciliation.
func InitScheduler(store *queue.Store) *cron.Cron {
	c := cron.New(cron.WithSeconds())

	_, err := c.AddFunc("0 * * * * *", func() { SweepExpiredEntries(store) })
	if err != nil {
		log.Error("could not schedule SweepExpiredEntries: ", err)
	}

	_, err = c.AddFunc("0 0 3 * * *", ReconcileListenerCounts)
	if err != nil {
		log.Error("could not schedule ReconcileListenerCounts: ", err)
	}

	c.Start()
	log.Info("cron scheduler started")
	return c
}
