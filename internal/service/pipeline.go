package service

import (
	"context"
	"time"

	apperrors "go-leximed/internal/errors"
	"go-leximed/internal/logger"
	"go-leximed/internal/observer"

	"github.com/sirupsen/logrus"
)

const (
	pipelineNutritionalScan  = "nutritional_scan"
	pipelineSimplify         = "simplify"
	pipelineReadPrescription = "read_prescription"
	pipelineChatReport       = "chat_report"
	pipelineLocateHospital   = "locate_hospital"
)

const (
	stageExtract        = "extract"
	stageReportSummary  = "report_summary"
	stageFoodAnalysis   = "food_analysis"
	stageComparison     = "comparison"
	stageStructured     = "structured_summary"
	stageTranscription  = "transcription"
	stageMedicationList = "medication_list"
	stageExplanation    = "medication_explanation"
	stageAnswer         = "answer"
	stageReportJSON     = "report_json"
	stageHospitals      = "hospitals"
)

// pipelineRun tracks one invocation of a pipeline. It is owned by a single
// request goroutine and never shared.
type pipelineRun struct {
	ctx        context.Context
	events     observer.Subject
	name       string
	start      time.Time
	stageStart time.Time
}

func (s *medicalService) begin(ctx context.Context, name string) *pipelineRun {
	now := time.Now()
	run := &pipelineRun{ctx: ctx, events: s.events, name: name, start: now, stageStart: now}
	run.publish(observer.PipelineEvent{EventType: observer.PipelineStarted, Success: true})
	return run
}

func (r *pipelineRun) publish(e observer.PipelineEvent) {
	if r.events == nil {
		return
	}
	e.Pipeline = r.name
	e.Timestamp = time.Now()
	r.events.NotifyObservers(r.ctx, e)
}

// stageDone records a successful stage and starts timing the next one
func (r *pipelineRun) stageDone(stage string, metadata map[string]interface{}) {
	now := time.Now()
	r.publish(observer.PipelineEvent{
		EventType:      observer.StageCompleted,
		Stage:          stage,
		ProcessingTime: now.Sub(r.stageStart),
		Success:        true,
		Metadata:       metadata,
	})
	r.stageStart = now
}

// fallback records a stage whose failure was absorbed
func (r *pipelineRun) fallback(stage string, err error) {
	now := time.Now()
	logger.WithContext(r.ctx).WithFields(logrus.Fields{
		"pipeline": r.name,
		"stage":    stage,
	}).WithError(err).Warn("Stage failed, continuing with fallback")

	r.publish(observer.PipelineEvent{
		EventType:      observer.StageFallback,
		Stage:          stage,
		ProcessingTime: now.Sub(r.stageStart),
		ErrorMessage:   err.Error(),
	})
	r.stageStart = now
}

// fail ends the run and hands err back for returning
func (r *pipelineRun) fail(stage string, err *apperrors.AppError) error {
	r.publish(observer.PipelineEvent{
		EventType:      observer.PipelineFailed,
		Stage:          stage,
		ProcessingTime: time.Since(r.start),
		ErrorMessage:   err.Detail(),
		Metadata:       map[string]interface{}{"error_type": err.Type, "status_code": err.StatusCode},
	})
	return err
}

func (r *pipelineRun) finish() {
	r.publish(observer.PipelineEvent{
		EventType:      observer.PipelineCompleted,
		ProcessingTime: time.Since(r.start),
		Success:        true,
	})
}
