package masking_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/watchit/watchit/pkg/masking"
)

func TestRedactGuidance_Email(t *testing.T) {
	out := masking.RedactGuidance("contact parent at jane.doe@example.com about overrides")
	assert.Equal(t, "contact parent at [REDACTED_EMAIL] about overrides", out)
}

func TestRedactGuidance_URL(t *testing.T) {
	out := masking.RedactGuidance("override seen on https://example.com/secret/path?x=1 repeatedly")
	assert.Equal(t, "override seen on [REDACTED_URL] repeatedly", out)
}

func TestRedactGuidance_PlainTextUnchanged(t *testing.T) {
	out := masking.RedactGuidance("be more lenient about educational science sites")
	assert.Equal(t, "be more lenient about educational science sites", out)
}

func TestRedactGuidance_Empty(t *testing.T) {
	assert.Equal(t, "", masking.RedactGuidance(""))
}
