package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	MagicLinksIssued = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "resumehub", Name: "magic_links_issued_total", Help: "Number of magic links issued."},
	)
	MagicLinksRedeemed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "resumehub", Name: "magic_links_redeemed_total", Help: "Number of magic link redemption attempts by result."},
		[]string{"result"},
	)
	EmailsSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "resumehub", Name: "emails_sent_total", Help: "Number of outbound emails by kind and result."},
		[]string{"kind", "result"},
	)
	ResumesUploaded = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "resumehub", Name: "resumes_uploaded_total", Help: "Number of resumes uploaded."},
	)
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "resumehub", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "resumehub", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(MagicLinksIssued)
	reg.MustRegister(MagicLinksRedeemed)
	reg.MustRegister(EmailsSent)
	reg.MustRegister(ResumesUploaded)
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
}
