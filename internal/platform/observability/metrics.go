package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PostsIngested = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "newsbot_posts_ingested_total",
		Help: "The total number of posts captured from source channels",
	}, []string{"channel"})

	PipelineProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "newsbot_pipeline_processed_total",
		Help: "The total number of posts processed by the pipeline",
	}, []string{"status"})

	PipelineDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "newsbot_pipeline_drops_total",
		Help: "Total number of dropped posts by reason",
	}, []string{"reason"})

	PipelineBacklog = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "newsbot_pipeline_backlog_size",
		Help: "Number of unprocessed posts in the database",
	})

	PipelineBatchDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "newsbot_pipeline_batch_duration_seconds",
		Help:    "Duration in seconds to process a pipeline batch",
		Buckets: []float64{1, 2, 5, 10, 20, 30, 60, 120, 300},
	})

	ItemsClassified = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "newsbot_items_classified_total",
		Help: "The total number of news items persisted by category",
	}, []string{"category"})

	LLMRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "newsbot_llm_request_duration_seconds",
		Help:    "Duration of LLM classification requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"model"})

	FanoutSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "newsbot_fanout_sent_total",
		Help: "The total number of per-recipient deliveries",
	}, []string{"status"})

	FanoutRecipients = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "newsbot_fanout_recipients",
		Help:    "Distribution of recipient counts per dispatched item",
		Buckets: []float64{0, 1, 5, 10, 50, 100, 500, 1000, 5000},
	})

	ReaderFloodWaitSecondsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "newsbot_reader_flood_wait_seconds_total",
		Help: "Total time in seconds spent waiting for Telegram flood control",
	}, []string{"channel"})

	ReaderFetchRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "newsbot_reader_fetch_requests_total",
		Help: "Total number of history fetch requests to Telegram",
	}, []string{"channel", "status"})

	TranslateRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "newsbot_translate_requests_total",
		Help: "Total number of translation requests",
	}, []string{"status"})
)
