package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateRequiresExactlyOneMode(t *testing.T) {
	assert.Error(t, CLIArgs{}.Validate())
	assert.Error(t, CLIArgs{TrainSwarm: true, RunBenchmarks: true}.Validate())
	assert.NoError(t, CLIArgs{TrainSwarm: true}.Validate())
	assert.NoError(t, CLIArgs{RunBenchmarks: true}.Validate())
}

func TestValidateSkipsModeCheckForHelpAndVersion(t *testing.T) {
	assert.NoError(t, CLIArgs{ShowHelp: true}.Validate())
	assert.NoError(t, CLIArgs{ShowVersion: true}.Validate())
}
