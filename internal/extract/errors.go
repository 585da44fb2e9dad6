package extract

import "errors"

var (
	// ErrClassificationAmbiguous means the model did not give a usable
	// yes/no answer to the invoice check.
	ErrClassificationAmbiguous = errors.New("classification response was not a clear yes/no")

	// ErrMalformedResponse means the model's extraction output could
	// not be parsed as JSON, after the corrective retry.
	ErrMalformedResponse = errors.New("model response was not parseable JSON")
)
