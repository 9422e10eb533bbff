package taxonomy

import "time"

var catalog = []SignalCategory{
	{
		ID:              "competitive",
		Name:            "Competitive Landscape",
		Phase:           PhaseExternal,
		RefreshInterval: 15 * time.Minute,
		DataPoints: []DataPoint{
			{
				ID:         "competitor_price_change",
				MetricType: MetricPercentage,
				Unit:       "%",
				Sources:    []string{"news_feed", "pricing_pages"},
				DefaultThreshold: &Threshold{
					Operator: OpGT,
					Value:    5,
					Urgency:  "high",
				},
			},
			{
				ID:         "competitor_product_launches",
				MetricType: MetricCount,
				Sources:    []string{"news_feed", "press_releases"},
				DefaultThreshold: &Threshold{
					Operator: OpGTE,
					Value:    1,
					Urgency:  "medium",
				},
			},
			{
				ID:         "market_share_trend",
				MetricType: MetricTrend,
				Sources:    []string{"analyst_reports"},
				DefaultThreshold: &Threshold{
					Operator: OpDrop,
					Value:    2,
					Urgency:  "critical",
				},
			},
		},
		Playbooks: []string{"competitive-response", "pricing-review"},
	},
	{
		ID:              "market",
		Name:            "Market Conditions",
		Phase:           PhaseExternal,
		RefreshInterval: 30 * time.Minute,
		DataPoints: []DataPoint{
			{
				ID:         "sector_sentiment",
				MetricType: MetricScore,
				Sources:    []string{"news_feed", "social_monitoring"},
				DefaultThreshold: &Threshold{
					Operator: OpLT,
					Value:    40,
					Urgency:  "medium",
				},
			},
			{
				ID:         "demand_index",
				MetricType: MetricTrend,
				Sources:    []string{"industry_reports"},
				DefaultThreshold: &Threshold{
					Operator: OpDrop,
					Value:    10,
					Urgency:  "high",
				},
			},
			{
				ID:         "supply_chain_disruption",
				MetricType: MetricBoolean,
				Sources:    []string{"news_feed", "logistics_partners"},
				DefaultThreshold: &Threshold{
					Operator: OpEQ,
					Value:    1,
					Urgency:  "critical",
				},
			},
		},
		Playbooks: []string{"market-shift-assessment"},
	},
	{
		ID:              "regulatory",
		Name:            "Regulatory & Compliance",
		Phase:           PhaseExternal,
		RefreshInterval: time.Hour,
		DataPoints: []DataPoint{
			{
				ID:         "pending_regulation_mentions",
				MetricType: MetricCount,
				Sources:    []string{"news_feed", "government_registers"},
				DefaultThreshold: &Threshold{
					Operator: OpSpike,
					Value:    3,
					Urgency:  "high",
				},
			},
			{
				ID:         "compliance_deadline_proximity",
				MetricType: MetricCount,
				Unit:       "days",
				Sources:    []string{"legal_calendar"},
				DefaultThreshold: &Threshold{
					Operator: OpLTE,
					Value:    30,
					Urgency:  "high",
				},
			},
		},
		Playbooks: []string{"regulatory-readiness"},
	},
	{
		ID:              "customer",
		Name:            "Customer Signals",
		Phase:           PhaseExternal,
		RefreshInterval: time.Hour,
		DataPoints: []DataPoint{
			{
				ID:         "nps_score",
				MetricType: MetricScore,
				Sources:    []string{"survey_platform"},
				DefaultThreshold: &Threshold{
					Operator: OpLT,
					Value:    30,
					Urgency:  "medium",
				},
			},
			{
				ID:         "churn_rate",
				MetricType: MetricPercentage,
				Unit:       "%",
				Sources:    []string{"crm"},
				DefaultThreshold: &Threshold{
					Operator: OpGT,
					Value:    5,
					Urgency:  "high",
				},
			},
			{
				ID:         "sentiment_mentions",
				MetricType: MetricText,
				Sources:    []string{"social_monitoring", "support_tickets"},
			},
		},
		Playbooks: []string{"customer-retention"},
	},
	{
		ID:              "technology",
		Name:            "Technology Disruption",
		Phase:           PhaseExternal,
		RefreshInterval: 2 * time.Hour,
		DataPoints: []DataPoint{
			{
				ID:         "disruption_mentions",
				MetricType: MetricCount,
				Sources:    []string{"news_feed", "research_feeds"},
				DefaultThreshold: &Threshold{
					Operator: OpSpike,
					Value:    5,
					Urgency:  "medium",
				},
			},
			{
				ID:         "patent_filings",
				MetricType: MetricCount,
				Sources:    []string{"patent_registers"},
				DefaultThreshold: &Threshold{
					Operator: OpGTE,
					Value:    2,
					Urgency:  "low",
				},
			},
		},
		Playbooks: []string{"innovation-response"},
	},
	{
		ID:              "financial",
		Name:            "Financial Health",
		Phase:           PhaseInternal,
		RefreshInterval: 24 * time.Hour,
		DataPoints: []DataPoint{
			{
				ID:         "revenue_run_rate",
				MetricType: MetricCurrency,
				Unit:       "USD",
				Sources:    []string{"erp"},
				DefaultThreshold: &Threshold{
					Operator: OpDrop,
					Value:    10,
					Urgency:  "critical",
				},
			},
			{
				ID:         "burn_rate",
				MetricType: MetricCurrency,
				Unit:       "USD",
				Sources:    []string{"erp"},
				DefaultThreshold: &Threshold{
					Operator: OpGT,
					Value:    0,
					Urgency:  "medium",
				},
			},
		},
		Playbooks: []string{"financial-review"},
	},
	{
		ID:              "operational",
		Name:            "Operational Readiness",
		Phase:           PhaseInternal,
		RefreshInterval: 6 * time.Hour,
		DataPoints: []DataPoint{
			{
				ID:         "incident_count",
				MetricType: MetricCount,
				Sources:    []string{"incident_tracker"},
				DefaultThreshold: &Threshold{
					Operator: OpSpike,
					Value:    2,
					Urgency:  "high",
				},
			},
			{
				ID:         "capacity_utilisation",
				MetricType: MetricPercentage,
				Unit:       "%",
				Sources:    []string{"ops_dashboard"},
				DefaultThreshold: &Threshold{
					Operator: OpGT,
					Value:    90,
					Urgency:  "medium",
				},
			},
		},
		Playbooks: []string{"operational-escalation"},
	},
}
