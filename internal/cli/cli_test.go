package cli

import (
	"bytes"
	"os"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var taskIDPattern = regexp.MustCompile(`task-([0-9a-z]{6})`)

// runCLI executes one command against the repo in the current directory.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func inTempRepo(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(wd) })

	out, err := runCLI(t, "init")
	require.NoError(t, err)
	require.Contains(t, out, "Initialized knecht")
}

func addTask(t *testing.T, title string) string {
	t.Helper()
	out, err := runCLI(t, "add", title, "-a", "Done when verified")
	require.NoError(t, err)
	match := taskIDPattern.FindStringSubmatch(out)
	require.NotNil(t, match, "add output should contain a task id: %q", out)
	return match[1]
}

func TestCommandsRequireInit(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(wd) })

	_, err = runCLI(t, "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "knecht init")
}

func TestAddShowsBlockSyntax(t *testing.T) {
	inTempRepo(t)

	out, err := runCLI(t, "add", "New task", "-a", "Done")
	require.NoError(t, err)
	id := taskIDPattern.FindStringSubmatch(out)[1]
	// The hint puts the new task on the blocker side.
	assert.Contains(t, out, "knecht block")
	assert.Contains(t, out, "by task-"+id)
}

func TestNextShowsDescriptionAndPain(t *testing.T) {
	inTempRepo(t)

	out, err := runCLI(t, "add", "Important task", "-d", "Fix the flaky deploy", "-a", "Done")
	require.NoError(t, err)
	id := taskIDPattern.FindStringSubmatch(out)[1]

	out, err = runCLI(t, "next")
	require.NoError(t, err)
	assert.Contains(t, out, "task-"+id+"  Important task")
	assert.Contains(t, out, "Fix the flaky deploy")
	assert.NotContains(t, out, "pain count")

	_, err = runCLI(t, "pain", "-t", "task-"+id, "-d", "deploy failed again")
	require.NoError(t, err)
	_, err = runCLI(t, "pain", "-t", "task-"+id, "-d", "and again")
	require.NoError(t, err)

	out, err = runCLI(t, "next")
	require.NoError(t, err)
	assert.Contains(t, out, "Important task (pain count: 2)")
}

func TestAddAndList(t *testing.T) {
	inTempRepo(t)

	id := addTask(t, "Write the report")

	out, err := runCLI(t, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "[ ] task-"+id+"  Write the report")
	assert.NotContains(t, out, "pain count")
	assert.Contains(t, out, "Usage instructions:")
	assert.Contains(t, out, "knecht show task-N")
}

func TestAddRequiresAcceptanceCriteria(t *testing.T) {
	inTempRepo(t)

	_, err := runCLI(t, "add", "Vague idea")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "acceptance criteria")
}

func TestShowDisplaysDetails(t *testing.T) {
	inTempRepo(t)

	id := addTask(t, "Detailed task")
	blocker := addTask(t, "Blocker Task")
	_, err := runCLI(t, "block", "task-"+id, "by", "task-"+blocker)
	require.NoError(t, err)

	out, err := runCLI(t, "show", "task-"+id)
	require.NoError(t, err)
	assert.Contains(t, out, "task-"+id)
	assert.Contains(t, out, "Status: open")
	assert.Contains(t, out, "Title: Detailed task")
	assert.Contains(t, out, "Acceptance Criteria: Done when verified")
	assert.Contains(t, out, "Blocked by:")
	assert.Contains(t, out, "Blocker Task")

	out, err = runCLI(t, "show", "task-"+blocker)
	require.NoError(t, err)
	assert.Contains(t, out, "Blocks:")
	assert.Contains(t, out, "task-"+id)
}

func TestNextSuggestsAndCompletes(t *testing.T) {
	inTempRepo(t)

	id := addTask(t, "Only task")

	out, err := runCLI(t, "next")
	require.NoError(t, err)
	assert.Contains(t, out, "task-"+id)
	assert.Contains(t, out, "Only task")

	out, err = runCLI(t, "done", "task-"+id)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ task-"+id+": Only task")

	out, err = runCLI(t, "next")
	require.NoError(t, err)
	assert.Contains(t, out, "No open tasks")
}

func TestNextSubstitutesBlocker(t *testing.T) {
	inTempRepo(t)

	blocked := addTask(t, "Blocked feature")
	blocker := addTask(t, "Prerequisite")
	_, err := runCLI(t, "block", "task-"+blocked, "by", "task-"+blocker)
	require.NoError(t, err)

	// Give the blocked task the higher priority; the blocker is suggested
	// in its place.
	_, err = runCLI(t, "pain", "-t", "task-"+blocked, "-d", "hurts")
	require.NoError(t, err)

	out, err := runCLI(t, "next")
	require.NoError(t, err)
	assert.Contains(t, out, "task-"+blocker)
	assert.Contains(t, out, "Prerequisite")
}

func TestStartBlockedTask(t *testing.T) {
	inTempRepo(t)

	blocked := addTask(t, "Blocked feature")
	blocker := addTask(t, "Prerequisite")
	_, err := runCLI(t, "block", "task-"+blocked, "by", "task-"+blocker)
	require.NoError(t, err)

	_, err = runCLI(t, "start", "task-"+blocked)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "blocked by "+blocker)

	// Finish the blocker and the task becomes startable.
	_, err = runCLI(t, "done", "task-"+blocker)
	require.NoError(t, err)
	out, err := runCLI(t, "start", "task-"+blocked)
	require.NoError(t, err)
	assert.Contains(t, out, "Started task-"+blocked)
}

func TestDeliverThenDone(t *testing.T) {
	inTempRepo(t)

	id := addTask(t, "Ship it")
	_, err := runCLI(t, "start", "task-"+id)
	require.NoError(t, err)

	out, err := runCLI(t, "deliver", "task-"+id)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ task-"+id+": Ship it")

	_, err = runCLI(t, "deliver", "task-"+id)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already delivered")

	_, err = runCLI(t, "done", "task-"+id)
	require.NoError(t, err)
	_, err = runCLI(t, "done", "task-"+id)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already done")
}

func TestPainShowsInList(t *testing.T) {
	inTempRepo(t)

	id := addTask(t, "Fix bug")
	_, err := runCLI(t, "pain", "-t", "task-"+id, "-d", "hit this again today")
	require.NoError(t, err)
	_, err = runCLI(t, "pain", "-t", "task-"+id, "-d", "and again")
	require.NoError(t, err)

	out, err := runCLI(t, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Fix bug (pain count: 2)")

	out, err = runCLI(t, "show", "task-"+id)
	require.NoError(t, err)
	assert.Contains(t, out, "hit this again today")
}

func TestPainRequiresFlags(t *testing.T) {
	inTempRepo(t)
	_, err := runCLI(t, "pain")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required")
}

func TestSkipPenaltyEndToEnd(t *testing.T) {
	inTempRepo(t)

	first := addTask(t, "First task")
	second := addTask(t, "Second task")
	head := first
	if second < first {
		head = second
	}
	other := first
	if head == first {
		other = second
	}

	_, err := runCLI(t, "done", "task-"+other)
	require.NoError(t, err)

	out, err := runCLI(t, "show", "task-"+head)
	require.NoError(t, err)
	assert.Contains(t, out, "Pain count: 1")
	assert.Contains(t, out, "Skip: task-"+other+" completed instead")
}

func TestListHidesDoneWithoutAll(t *testing.T) {
	inTempRepo(t)

	keep := addTask(t, "Keep me")
	finish := addTask(t, "Finish me")
	_, err := runCLI(t, "done", "task-"+finish)
	require.NoError(t, err)

	out, err := runCLI(t, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "task-"+keep)
	assert.NotContains(t, out, "task-"+finish)

	out, err = runCLI(t, "list", "--all")
	require.NoError(t, err)
	assert.Contains(t, out, "[x] task-"+finish+"  Finish me")
}

func TestUnblock(t *testing.T) {
	inTempRepo(t)

	blocked := addTask(t, "Blocked")
	blocker := addTask(t, "Blocker")
	_, err := runCLI(t, "block", "task-"+blocked, "by", "task-"+blocker)
	require.NoError(t, err)

	out, err := runCLI(t, "unblock", "task-"+blocked, "from", "task-"+blocker)
	require.NoError(t, err)
	assert.Contains(t, out, "Blocker removed")

	_, err = runCLI(t, "unblock", "task-"+blocked, "from", "task-"+blocker)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not blocked by")
}

func TestDelete(t *testing.T) {
	inTempRepo(t)

	id := addTask(t, "Doomed task")
	out, err := runCLI(t, "delete", "task-"+id)
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted task-"+id)

	out, err = runCLI(t, "list")
	require.NoError(t, err)
	assert.NotContains(t, out, "task-"+id)
}

func TestCheckReportsCleanGraph(t *testing.T) {
	inTempRepo(t)

	a := addTask(t, "First")
	b := addTask(t, "Second")
	_, err := runCLI(t, "block", "task-"+a, "by", "task-"+b)
	require.NoError(t, err)

	out, err := runCLI(t, "check")
	require.NoError(t, err)
	assert.Contains(t, out, "acyclic")

	// Deleting the blocker leaves an orphan edge behind; check flags it.
	_, err = runCLI(t, "delete", "task-"+b)
	require.NoError(t, err)
	out, err = runCLI(t, "check")
	require.NoError(t, err)
	assert.Contains(t, out, "references a deleted task")
}

func TestUpdateCommand(t *testing.T) {
	inTempRepo(t)

	id := addTask(t, "Old Title")
	_, err := runCLI(t, "update", "task-"+id, "-t", "New Title", "-d", "New description")
	require.NoError(t, err)

	out, err := runCLI(t, "show", "task-"+id)
	require.NoError(t, err)
	assert.Contains(t, out, "New Title")
	assert.Contains(t, out, "New description")
	assert.False(t, strings.Contains(out, "Old Title"))

	// Removing the description drops the label entirely.
	_, err = runCLI(t, "update", "task-"+id, "-d", "")
	require.NoError(t, err)
	out, err = runCLI(t, "show", "task-"+id)
	require.NoError(t, err)
	assert.NotContains(t, out, "Description:")

	_, err = runCLI(t, "update", "task-"+id)
	require.Error(t, err)
}

func TestImportBeadsCommand(t *testing.T) {
	inTempRepo(t)

	export := `[
		{"id": "bd-1", "title": "Imported bug", "status": "open", "priority": 2, "issue_type": "bug"},
		{"id": "bd-2", "title": "Finished work", "status": "done", "priority": 0, "issue_type": "task"}
	]`
	require.NoError(t, os.WriteFile("export.json", []byte(export), 0o644))

	out, err := runCLI(t, "import", "beads", "export.json")
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 2 tasks")

	out, err = runCLI(t, "list", "--all")
	require.NoError(t, err)
	assert.Contains(t, out, "Imported bug")
	assert.Contains(t, out, "[x]")
}
