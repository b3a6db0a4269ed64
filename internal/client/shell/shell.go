// Package shell implements the interactive TaskKeeper command loop.
package shell

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/atinyakov/TaskKeeper/internal/client/api"
	"github.com/atinyakov/TaskKeeper/internal/models"
)

// TaskClient is the subset of api.Client used by the shell.
type TaskClient interface {
	ListTasks(ctx context.Context, status models.TaskStatus, search string) ([]models.Task, error)
	GetTask(ctx context.Context, id string) (*models.Task, error)
	CreateTask(ctx context.Context, title, description string) (*models.Task, error)
	UpdateTaskStatus(ctx context.Context, id string, status models.TaskStatus) (*models.Task, error)
	DeleteTask(ctx context.Context, id string) error
}

const helpText = "Available commands: help, list [status] [search...], get <id>, add, status <id> <OPEN|IN_PROGRESS|DONE>, delete <id>, exit"

// Run reads commands from in until "exit" or end of input and executes them
// against client, writing results to out.
func Run(ctx context.Context, client TaskClient, in io.Reader, out io.Writer) {
	p := api.NewPrompter(in, out)

	for {
		line, ok := p.Ask("taskkeeper> ")
		if !ok {
			return
		}
		args := strings.Fields(line)
		if len(args) == 0 {
			continue
		}
		switch args[0] {
		case "help":
			fmt.Fprintln(out, helpText)
		case "list":
			status, search := parseListArgs(args[1:])
			tasks, err := client.ListTasks(ctx, status, search)
			if err != nil {
				fmt.Fprintln(out, "Error:", err)
				continue
			}
			printTasks(out, tasks)
		case "get":
			if len(args) < 2 {
				fmt.Fprintln(out, "Usage: get <id>")
				continue
			}
			t, err := client.GetTask(ctx, args[1])
			if err != nil {
				fmt.Fprintln(out, "Error:", err)
				continue
			}
			printJSON(out, t)
		case "add":
			title, description, ok := p.NewTask()
			if !ok {
				return
			}
			t, err := client.CreateTask(ctx, title, description)
			if err != nil {
				fmt.Fprintln(out, "Error:", err)
				continue
			}
			fmt.Fprintf(out, "Task created: %s\n", t.ID)
		case "status":
			if len(args) < 3 {
				fmt.Fprintln(out, "Usage: status <id> <OPEN|IN_PROGRESS|DONE>")
				continue
			}
			t, err := client.UpdateTaskStatus(ctx, args[1], models.TaskStatus(strings.ToUpper(args[2])))
			if err != nil {
				fmt.Fprintln(out, "Error:", err)
				continue
			}
			fmt.Fprintf(out, "Task %s is now %s\n", t.ID, t.Status)
		case "delete":
			if len(args) < 2 {
				fmt.Fprintln(out, "Usage: delete <id>")
				continue
			}
			if err := client.DeleteTask(ctx, args[1]); err != nil {
				fmt.Fprintln(out, "Error:", err)
				continue
			}
			fmt.Fprintln(out, "Task deleted")
		case "exit":
			fmt.Fprintln(out, "Bye")
			return
		default:
			fmt.Fprintln(out, "Unknown command. Type 'help' for a list of commands.")
		}
	}
}

// parseListArgs treats a leading status name as the status filter and the
// rest of the words as the search text.
func parseListArgs(args []string) (models.TaskStatus, string) {
	var status models.TaskStatus
	if len(args) > 0 {
		if s := models.TaskStatus(strings.ToUpper(args[0])); s.Valid() {
			status = s
			args = args[1:]
		}
	}
	return status, strings.Join(args, " ")
}

func printTasks(out io.Writer, tasks []models.Task) {
	if len(tasks) == 0 {
		fmt.Fprintln(out, "No tasks")
		return
	}
	for _, t := range tasks {
		fmt.Fprintf(out, "ID: %s\nTitle: %s\nDescription: %s\nStatus: %s\n---\n", t.ID, t.Title, t.Description, t.Status)
	}
}

func printJSON(out io.Writer, v any) {
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Fprintln(out, string(b))
}
