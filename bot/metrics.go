package bot

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	commandsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tambay_commands_total",
		Help: "Slash commands handled, by command and outcome.",
	}, []string{"command", "status"})

	smsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tambay_sms_sent_total",
		Help: "Outbound SMS attempts, by outcome.",
	}, []string{"status"})
)
