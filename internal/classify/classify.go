// Package classify assigns one user-supplied category to extracted article
// text via a zero-shot model.
package classify

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/classify-cli/internal/model"
	"github.com/sells-group/classify-cli/pkg/huggingface"
)

// maxModelChars bounds how much text is sent to the model per call. Fixed
// cost bound, not configurable.
const maxModelChars = 1000

// Classifier selects the best-matching category for a piece of text. One
// Classifier is constructed per run, bound to a single model; it carries no
// global state.
type Classifier struct {
	hf      huggingface.Client
	modelID string
}

// New creates a Classifier bound to a model repository ID.
func New(hf huggingface.Client, modelID string) *Classifier {
	return &Classifier{hf: hf, modelID: modelID}
}

// Model returns the model repository ID this classifier calls.
func (c *Classifier) Model() string { return c.modelID }

// Classify returns the label the model ranks highest for text. Empty text
// returns model.Uncategorized without calling the model. Text longer than
// the model bound is truncated to its leading characters. The top-ranked
// label is accepted as-is; no confidence threshold applies.
func (c *Classifier) Classify(ctx context.Context, text string, categories []string) (string, error) {
	if text == "" {
		return model.Uncategorized, nil
	}
	if len(categories) == 0 {
		return "", eris.New("classify: empty category set")
	}

	if r := []rune(text); len(r) > maxModelChars {
		text = string(r[:maxModelChars])
	}

	resp, err := c.hf.ZeroShot(ctx, huggingface.ZeroShotRequest{
		Model:           c.modelID,
		Inputs:          text,
		CandidateLabels: categories,
	})
	if err != nil {
		return "", eris.Wrap(err, "classify: zero-shot call")
	}
	if len(resp.Labels) == 0 {
		return "", eris.New("classify: model returned no labels")
	}

	return resp.Labels[0], nil
}
