package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsService exposes engine counters to prometheus. Dropped writes get
// their own counter because failed chat/playback writes are logged and
// dropped, never retried; the counter is the only trace they leave.
type MetricsService struct {
	roomsCreatedTotal     prometheus.Counter
	roomsSweptTotal       prometheus.Counter
	messagesSentTotal     prometheus.Counter
	playbackUpdatesTotal  prometheus.Counter
	droppedWritesTotal    *prometheus.CounterVec
	presenceNotifications prometheus.Counter
	activeRooms           prometheus.Gauge
}

func NewMetricsService(reg prometheus.Registerer) *MetricsService {
	factory := promauto.With(reg)

	return &MetricsService{
		roomsCreatedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "watchparty_rooms_created_total",
			Help: "Total number of rooms created",
		}),
		roomsSweptTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "watchparty_rooms_swept_total",
			Help: "Total number of expired rooms removed by the sweep",
		}),
		messagesSentTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "watchparty_messages_sent_total",
			Help: "Total number of chat messages written",
		}),
		playbackUpdatesTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "watchparty_playback_updates_total",
			Help: "Total number of playback state writes",
		}),
		droppedWritesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "watchparty_dropped_writes_total",
			Help: "Writes lost to store failures, by operation",
		}, []string{"operation"}),
		presenceNotifications: factory.NewCounter(prometheus.CounterOpts{
			Name: "watchparty_presence_notifications_total",
			Help: "Join/leave notifications emitted from presence diffs",
		}),
		activeRooms: factory.NewGauge(prometheus.GaugeOpts{
			Name: "watchparty_active_rooms",
			Help: "Rooms currently within TTL, as of the last sweep scan",
		}),
	}
}

func (m *MetricsService) RoomCreated()           { m.roomsCreatedTotal.Inc() }
func (m *MetricsService) RoomsSwept(n int)       { m.roomsSweptTotal.Add(float64(n)) }
func (m *MetricsService) MessageSent()           { m.messagesSentTotal.Inc() }
func (m *MetricsService) PlaybackUpdated()       { m.playbackUpdatesTotal.Inc() }
func (m *MetricsService) PresenceNotified()      { m.presenceNotifications.Inc() }
func (m *MetricsService) SetActiveRooms(n int)   { m.activeRooms.Set(float64(n)) }
func (m *MetricsService) DroppedWrite(op string) { m.droppedWritesTotal.WithLabelValues(op).Inc() }
