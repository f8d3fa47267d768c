package queue

type TaskType string

const (
	// TaskTypePipelineRun asks the worker to run one pipeline batch.
	TaskTypePipelineRun TaskType = "pipeline_run"
)
