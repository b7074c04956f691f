package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/matryer/is"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestSetup(t *testing.T) {
	is := is.New(t)
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	var buf bytes.Buffer
	Setup(&buf, false)
	log.Debug().Msg("hidden")
	log.Info().Int("column", 3).Msg("search-returning")
	out := buf.String()
	is.True(!strings.Contains(out, "hidden"))
	is.True(strings.Contains(out, "| INFO  | search-returning"))
	is.True(strings.Contains(out, "column:3"))

	buf.Reset()
	Setup(&buf, true)
	is.True(strings.Contains(buf.String(), "Debug logging is on"))
}

func TestSetDebug(t *testing.T) {
	is := is.New(t)
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	var buf bytes.Buffer
	Setup(&buf, false)
	SetDebug(true)
	log.Debug().Msg("now-visible")
	is.True(strings.Contains(buf.String(), "now-visible"))

	buf.Reset()
	SetDebug(false)
	log.Debug().Msg("hidden-again")
	is.Equal(buf.String(), "")
}
