package service

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	ApprovalsProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_approvals_total",
			Help: "Requests processed by the admin review surface",
		},
		[]string{"kind", "outcome"},
	)
	ReferralCommissionsPaid = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ledger_referral_commissions_total",
			Help: "Referral commissions paid on first approved deposits",
		},
	)
	ProfitAccruals = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ledger_profit_accruals_total",
			Help: "Subscription profit accrual credits applied",
		},
	)
	RewardClaims = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_reward_claims_total",
			Help: "Daily reward claims and spin wheel plays",
		},
		[]string{"kind"},
	)
)

func init() {
	prometheus.MustRegister(ApprovalsProcessed)
	prometheus.MustRegister(ReferralCommissionsPaid)
	prometheus.MustRegister(ProfitAccruals)
	prometheus.MustRegister(RewardClaims)
}
