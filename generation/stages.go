package generation

import "reddit-persona/models"

// stageSpan 은 단계가 차지하는 전체 진행률 구간이다.
type stageSpan struct {
	start, end int
}

// pipeline lists the stages in their required order.
var pipeline = []models.Stage{
	models.StageIdle,
	models.StageInitializing,
	models.StageFetchingPosts,
	models.StageFetchingComments,
	models.StageAnalyzingSentiment,
	models.StagePreparingData,
	models.StageGeneratingPersona,
	models.StageSavingResults,
	models.StageFinalizing,
	models.StageCompleted,
}

var stageSpans = map[models.Stage]stageSpan{
	models.StageIdle:               {0, 0},
	models.StageInitializing:       {0, 5},
	models.StageFetchingPosts:      {5, 30},
	models.StageFetchingComments:   {30, 55},
	models.StageAnalyzingSentiment: {55, 65},
	models.StagePreparingData:      {65, 70},
	models.StageGeneratingPersona:  {70, 90},
	models.StageSavingResults:      {90, 96},
	models.StageFinalizing:         {96, 100},
	models.StageCompleted:          {100, 100},
}

// stageIndex returns the position of s in the pipeline, or -1 for error and unknown stages.
func stageIndex(s models.Stage) int {
	for i, p := range pipeline {
		if p == s {
			return i
		}
	}
	return -1
}

// OverallProgress maps a stage-local progress value onto the 0-100 run scale.
func OverallProgress(stage models.Stage, progress int) int {
	span, ok := stageSpans[stage]
	if !ok {
		return 0
	}
	progress = clamp(progress, 0, 100)
	return span.start + (span.end-span.start)*progress/100
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
