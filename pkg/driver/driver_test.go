package driver

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"strings"
	"testing"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/j-f1/forked-engine262/pkg/errors"
	"github.com/j-f1/forked-engine262/pkg/fixture"
	"github.com/j-f1/forked-engine262/pkg/vm"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func testConfig() Config {
	return Config{LogLevel: "debug", LogFormat: "text", MaxCallDepth: vm.DefaultMaxCallDepth, NoColor: true}
}

func newTestSession(t *testing.T) (*Session, *bytes.Buffer) {
	t.Helper()
	logger, _ := logtest.NewNullLogger()
	s := New(testConfig(), logger)
	t.Cleanup(s.Close)
	var out bytes.Buffer
	s.SetOutput(&out)
	return s, &out
}

func run(t *testing.T, s *Session, text string) (vm.Value, error) {
	t.Helper()
	script, err := fixture.ParseScript(text, false)
	require.NoError(t, err)
	return s.RunScript(script, nil)
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, vm.DefaultMaxCallDepth, cfg.MaxCallDepth)
	assert.Equal(t, "testdata/fixtures/*.yaml", cfg.FixtureGlob)

	t.Setenv("ENGINE262_LOG_LEVEL", "debug")
	t.Setenv("ENGINE262_MAX_CALL_DEPTH", "64")
	t.Setenv("ENGINE262_NO_COLOR", "true")
	cfg, err = LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 64, cfg.MaxCallDepth)
	assert.True(t, cfg.NoColor)

	t.Setenv("ENGINE262_MAX_CALL_DEPTH", "deep")
	_, err = LoadConfig()
	assert.ErrorContains(t, err, "MAX_CALL_DEPTH")
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	cfg := testConfig()
	cfg.LogFormat = "json"
	logger, err := cfg.NewLogger(&buf)
	require.NoError(t, err)
	logger.WithField("jobs", 2).Debug("drained job queue")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "drained job queue", entry["msg"])
	assert.EqualValues(t, 2, entry["jobs"])

	cfg.LogLevel = "chatty"
	_, err = cfg.NewLogger(&buf)
	assert.ErrorContains(t, err, `invalid log level "chatty"`)

	cfg.LogLevel, cfg.LogFormat = "info", "xml"
	_, err = cfg.NewLogger(&buf)
	assert.ErrorContains(t, err, `invalid log format "xml"`)
}

func TestSessionKeepsDeclarations(t *testing.T) {
	s, _ := newTestSession(t)
	_, err := run(t, s, `[{type: Let, name: x, init: 40}]`)
	require.NoError(t, err)
	v, err := run(t, s, `[{type: Binary, op: "+", left: x, right: 2}]`)
	require.NoError(t, err)
	assert.Equal(t, "42", vm.Inspect(v))
}

func TestSessionUncaughtError(t *testing.T) {
	s, _ := newTestSession(t)
	_, err := run(t, s, `[{type: Throw, value: {type: New, callee: RangeError, args: ["too far"]}}]`)
	var uncaught *errors.UncaughtError
	require.True(t, stderrors.As(err, &uncaught), "got %v", err)
	assert.Equal(t, "RangeError", uncaught.Name)
	assert.Equal(t, "too far", uncaught.Msg)
	assert.Equal(t, "RangeError: too far", uncaught.Rendered)

	_, err = run(t, s, `[{type: Throw, value: 3}]`)
	require.True(t, stderrors.As(err, &uncaught))
	assert.Empty(t, uncaught.Name)
	assert.Equal(t, "3", uncaught.Rendered)
	assert.Zero(t, s.Agent().StackDepth())
}

func TestSessionDrainsJobs(t *testing.T) {
	s, out := newTestSession(t)
	v, err := run(t, s, `
- type: Call
  callee: {type: Member, object: {type: Call, callee: {type: Member, object: Promise, property: resolve}, args: ["later"]}, property: then}
  args: [{type: Member, object: host, property: print}]
- {type: Call, callee: {type: Member, object: host, property: print}, args: ["now", 1, {type: Object}]}
`)
	require.NoError(t, err)
	assert.Equal(t, "undefined", vm.Inspect(v))
	assert.Equal(t, "now 1 {}\nlater\n", out.String())
	assert.Positive(t, s.JobsRun())
}

func TestHostObject(t *testing.T) {
	s, _ := newTestSession(t)
	v, err := run(t, s, `[{type: Call, callee: {type: Member, object: host, property: depth}}]`)
	require.NoError(t, err)
	assert.Equal(t, "2", vm.Inspect(v), "script context plus the builtin's own")

	v, err = run(t, s, `
- {type: Var, name: other, init: {type: Call, callee: {type: Member, object: host, property: createRealm}}}
- {type: Unary, op: typeof, arg: {type: Member, object: other, property: host}}
`)
	require.NoError(t, err)
	assert.Equal(t, `"object"`, vm.Inspect(v), "created realms get the host object too")
}

func writeFile(t *testing.T, fs afero.Fs, path, content string) {
	t.Helper()
	require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0o644))
}

func newTestRunner(t *testing.T, fs afero.Fs) *Runner {
	t.Helper()
	logger, _ := logtest.NewNullLogger()
	return NewRunner(testConfig(), logger, fs)
}

func TestRunFixtures(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "fixtures/a.yaml", `
name: passes
script: [{type: Binary, op: "*", left: 6, right: 7}]
expect: {value: "42"}
---
name: wrong value
script: [1]
expect: {value: "2"}
---
name: wrong error
script: [nope]
expect: {throws: TypeError}
`)
	writeFile(t, fs, "fixtures/b.yaml", `
name: unexpected throw
script: [{type: Throw, value: 1}]
---
name: message mismatch
script: [{type: Throw, value: {type: New, callee: TypeError, args: ["abc"]}}]
expect: {throws: TypeError, message: "^xyz"}
---
name: unhandled rejection
script: [{type: Call, callee: {type: Member, object: Promise, property: reject}, args: [1]}]
`)
	r := newTestRunner(t, fs)
	paths, err := r.Glob("fixtures/*.yaml")
	require.NoError(t, err)
	assert.Equal(t, []string{"fixtures/a.yaml", "fixtures/b.yaml"}, paths)

	fixtures, err := r.Load(paths)
	require.NoError(t, err)
	results := r.RunAll(fixtures)
	require.Len(t, results, 6)

	want := []string{
		"",
		"expected value 2, got 1",
		"expected TypeError to be thrown, got ReferenceError: nope is not defined",
		"unexpected Uncaught 1",
		`message "abc" does not match ^xyz`,
		"expected 0 unhandled rejections, got 1",
	}
	for i, res := range results {
		if want[i] == "" {
			assert.True(t, res.Passed(), "%s: %v", res.Fixture.Name, res.Err)
			continue
		}
		require.Error(t, res.Err, res.Fixture.Name)
		assert.Contains(t, res.Err.Error(), want[i], res.Fixture.Name)
		assert.False(t, res.Internal())
		var ee *errors.ExpectationError
		require.True(t, stderrors.As(res.Err, &ee))
		assert.Equal(t, res.Fixture.Position, ee.Pos())
	}

	s := Summarize(results)
	assert.Equal(t, Summary{Total: 6, Passed: 1, Failed: 5, Duration: s.Duration}, s)
}

func TestLoadMergesDecodeErrors(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "one.yaml", "name: one\nscript: [{type: Bogus}]\n")
	writeFile(t, fs, "two.yaml", "name: two\nscript: 1\n")
	r := newTestRunner(t, fs)

	_, err := r.Load([]string{"one.yaml", "two.yaml"})
	var list fixture.ErrorList
	require.True(t, stderrors.As(err, &list), "got %v", err)
	require.Len(t, list, 2)
	assert.Equal(t, "one.yaml", list[0].Pos().Source.Name)
	assert.Equal(t, "two.yaml", list[1].Pos().Source.Name)

	_, err = r.Load([]string{"missing.yaml"})
	require.Error(t, err)
	assert.False(t, stderrors.As(err, &list))
}

func TestDisplay(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "d.yaml", `
name: good
script: [1]
expect: {value: "1"}
---
name: bad
script: [1]
expect: {value: "2"}
`)
	r := newTestRunner(t, fs)
	fixtures, err := r.Load([]string{"d.yaml"})
	require.NoError(t, err)
	results := r.RunAll(fixtures)

	var buf bytes.Buffer
	d := NewDisplay(&buf, true)
	for _, res := range results {
		d.Result(res)
	}
	d.Summary(Summarize(results))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "PASS good ("), out)
	assert.Contains(t, out, "FAIL bad (")
	assert.Contains(t, out, "expected value 2, got 1")
	assert.Contains(t, out, "2 fixtures, 1 passed, 1 failed in ")
	assert.NotContains(t, out, "\x1b[", "colour is disabled")
}

// TestFixtureSuite runs the fixtures shipped in testdata.
func TestFixtureSuite(t *testing.T) {
	r := newTestRunner(t, afero.NewOsFs())
	paths, err := r.Glob("testdata/fixtures/*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	fixtures, err := r.Load(paths)
	require.NoError(t, err)
	for _, res := range r.RunAll(fixtures) {
		t.Run(res.Fixture.Name, func(t *testing.T) {
			assert.NoError(t, res.Err, "value %s", res.Value)
		})
	}
}
