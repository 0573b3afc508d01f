package rag

import (
	"errors"
	"fmt"
)

// ErrEmptyQuestion is returned when the question is empty or whitespace.
var ErrEmptyQuestion = errors.New("question must not be empty")

// Pipeline stage names reported by StageError.
const (
	StageRephrase   = "rephrase"
	StageTranslate  = "translate"
	StageMultiQuery = "multi_query"
	StageRetrieve   = "retrieve"
	StageSynthesize = "synthesize"
	StageValidate   = "validate"
	StageRank       = "rank"
	StageRepair     = "repair"
)

// StageError reports a collaborator failure together with the pipeline stage it happened in.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

func stageError(stage string, err error) error {
	return &StageError{Stage: stage, Err: err}
}
