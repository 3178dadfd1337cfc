package server

import "sync"

// Metrics holds application counters. All methods are safe for
// concurrent use.
type Metrics struct {
	mu sync.RWMutex

	// Auth metrics
	loginAttemptsTotal int64
	loginSuccessTotal  int64
	loginFailuresTotal int64
	signupsTotal       int64
	verificationsTotal int64

	// File metrics
	uploadsTotal      int64
	uploadErrorsTotal int64
	listsTotal        int64

	// System metrics
	requestsTotal    int64
	requestErrors4xx int64
	requestErrors5xx int64
}

var globalMetrics = &Metrics{}

// GetMetrics returns the global metrics instance
func GetMetrics() *Metrics {
	return globalMetrics
}

// RecordLoginAttempt counts one credential check.
func (m *Metrics) RecordLoginAttempt() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loginAttemptsTotal++
}

// RecordLoginSuccess counts one issued session.
func (m *Metrics) RecordLoginSuccess() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loginSuccessTotal++
}

// RecordLoginFailure counts one rejected login.
func (m *Metrics) RecordLoginFailure() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loginFailuresTotal++
}

// RecordSignup counts one created client account.
func (m *Metrics) RecordSignup() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.signupsTotal++
}

// RecordVerification counts one completed email verification.
func (m *Metrics) RecordVerification() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.verificationsTotal++
}

// RecordUpload counts one stored file.
func (m *Metrics) RecordUpload() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.uploadsTotal++
}

// RecordUploadError counts one rejected or failed upload.
func (m *Metrics) RecordUploadError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.uploadErrorsTotal++
}

// RecordList counts one file listing.
func (m *Metrics) RecordList() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listsTotal++
}

// RecordRequest records an HTTP request and its status class.
func (m *Metrics) RecordRequest(status int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestsTotal++
	switch {
	case status >= 500:
		m.requestErrors5xx++
	case status >= 400:
		m.requestErrors4xx++
	}
}

// MetricsSnapshot is a point-in-time copy of all counters.
type MetricsSnapshot struct {
	LoginAttemptsTotal int64
	LoginSuccessTotal  int64
	LoginFailuresTotal int64
	SignupsTotal       int64
	VerificationsTotal int64
	UploadsTotal       int64
	UploadErrorsTotal  int64
	ListsTotal         int64
	RequestsTotal      int64
	RequestErrors4xx   int64
	RequestErrors5xx   int64
}

// Snapshot returns a consistent copy of the counters.
func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return MetricsSnapshot{
		LoginAttemptsTotal: m.loginAttemptsTotal,
		LoginSuccessTotal:  m.loginSuccessTotal,
		LoginFailuresTotal: m.loginFailuresTotal,
		SignupsTotal:       m.signupsTotal,
		VerificationsTotal: m.verificationsTotal,
		UploadsTotal:       m.uploadsTotal,
		UploadErrorsTotal:  m.uploadErrorsTotal,
		ListsTotal:         m.listsTotal,
		RequestsTotal:      m.requestsTotal,
		RequestErrors4xx:   m.requestErrors4xx,
		RequestErrors5xx:   m.requestErrors5xx,
	}
}
