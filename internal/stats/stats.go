package stats

import (
	"encoding/json"
	"expvar"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	NumActiveConnections  = "NumActiveConnections"
	NumMessagesSent       = "NumMessagesSent"
	NumPushesDelivered    = "NumPushesDelivered"
	NumPushesMissed       = "NumPushesMissed"
	NumContactSubmissions = "NumContactSubmissions"
)

type StatsProvider interface {
	Incr(name string)
	Decr(name string)
	RegisterMetric(name string)
}

// StatsUpdater serializes metric updates through a single goroutine
// and exposes them in expvar format on /debug/vars.
type StatsUpdater struct {
	log        *zap.Logger
	vars       *expvar.Map
	updateChan chan *metricsUpdateReq
	stopOnce   sync.Once
}

type metricsUpdateReq struct {
	name  string
	value int64
}

var (
	varsOnce sync.Once
	varsMap  *expvar.Map
)

// expvar panics on duplicate registration, so the map is shared by
// every updater created in the process.
func statsMap() *expvar.Map {
	varsOnce.Do(func() {
		varsMap = expvar.NewMap("supportchat-stats")
	})
	return varsMap
}

func (su *StatsUpdater) expvarHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	expvarData := make(map[string]any)
	su.vars.Do(func(kv expvar.KeyValue) {
		var value any
		if err := json.Unmarshal([]byte(kv.Value.String()), &value); err != nil {
			value = kv.Value.String()
		}
		expvarData[kv.Key] = value
	})

	if err := json.NewEncoder(w).Encode(expvarData); err != nil {
		su.log.Error("encode stats", zap.Error(err))
	}
}

// NewStatsUpdater creates a new stats updater instance and mounts its
// handler on mux.
func NewStatsUpdater(mux *http.ServeMux, logger *zap.Logger) *StatsUpdater {
	su := &StatsUpdater{
		log:        logger,
		updateChan: make(chan *metricsUpdateReq, 512),
		vars:       statsMap(),
	}
	mux.Handle("GET /debug/vars", http.HandlerFunc(su.expvarHandler))
	su.initializeMetrics()

	return su
}

func (su *StatsUpdater) initializeMetrics() {
	startTime := time.Now()
	su.vars.Set("Uptime", expvar.Func(func() any {
		return time.Since(startTime).Milliseconds()
	}))
}

func (su *StatsUpdater) updateMetrics() {
	for req := range su.updateChan {
		metric, ok := su.vars.Get(req.name).(*expvar.Int)
		if !ok {
			su.log.Warn("metric not registered", zap.String("metric", req.name))
			continue
		}

		metric.Add(req.value)
	}
}

func (su *StatsUpdater) Incr(name string) {
	su.updateChan <- &metricsUpdateReq{name: name, value: 1}
}

func (su *StatsUpdater) Decr(name string) {
	su.updateChan <- &metricsUpdateReq{name: name, value: -1}
}

// RegisterMetric adds a counter. Registering an existing name keeps
// its current value.
func (su *StatsUpdater) RegisterMetric(name string) {
	if _, ok := su.vars.Get(name).(*expvar.Int); ok {
		return
	}
	su.vars.Set(name, new(expvar.Int))
}

func (su *StatsUpdater) Run() {
	go su.updateMetrics()
}

func (su *StatsUpdater) Stop() {
	su.stopOnce.Do(func() {
		close(su.updateChan)
	})
}
