package client

// Metrics receives lifecycle counters from a Client (expanded component
// C6). It exists so the core client package never has to import a
// metrics backend directly: callers who want Prometheus wire up
// client/promclient's implementation; everyone else leaves Metrics nil.
//
// Client never holds a nil Metrics itself: New and SetMetrics both
// substitute nopMetrics for a nil argument, so call sites can invoke
// c.metrics directly without a nil check.
type Metrics interface {
	// RequestStarted is called once per Request call that is not
	// refused by the pipelining guard and whose URL parses.
	RequestStarted(method, host string)
	// RequestFinished is called once the response is complete or an
	// error has been surfaced, with the response status (0 on failure)
	// and the outcome. Elapsed time is not passed.
	RequestFinished(method, host string, status int, err ErrorKind)
	// ConnectionOpened is called whenever a new Transport is dialed.
	ConnectionOpened(host string)
	// ConnectionReused is called whenever an existing Transport is kept
	// for the next request instead of being replaced.
	ConnectionReused(host string)
}

// nopMetrics implements Metrics with no-op methods, used whenever a
// Client is constructed without an explicit Metrics.
type nopMetrics struct{}

func (nopMetrics) RequestStarted(string, string)                 {}
func (nopMetrics) RequestFinished(string, string, int, ErrorKind) {}
func (nopMetrics) ConnectionOpened(string)                        {}
func (nopMetrics) ConnectionReused(string)                        {}
