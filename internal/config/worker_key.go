package config

type WorkerKeyStruct struct {
	PersistAnalysisRunsQueue string
	// AnalysisRunsDeadLetter holds runs that failed to persist
	// worker.MaxRunAttempts times.
	AnalysisRunsDeadLetter string
}

var WorkerKey = &WorkerKeyStruct{
	PersistAnalysisRunsQueue: "persist_analysis_runs_queue",
	AnalysisRunsDeadLetter:   "analysis_runs_dead_letter",
}
