package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/inkwellapp/inkwell/internal/client/models"
	"github.com/inkwellapp/inkwell/internal/common"
	"github.com/inkwellapp/inkwell/internal/protocol"
)

func (a *App) add(ctx context.Context, args []string) {
	content := strings.Join(args, " ")
	if content == "" {
		var err error
		content, err = GetMultiline(a.reader, "Enter page content", os.Stdout)
		if err != nil {
			log.Println(err.Error())
			return
		}
	}
	if content == "" {
		fmt.Println("Nothing to add.")
		return
	}

	p, err := a.pages.Create(ctx, &protocol.Page{Content: content})
	if err != nil {
		log.Println(err.Error())
		return
	}
	fmt.Printf("Added %s\n", p.ID)
}

func (a *App) addTask(ctx context.Context, args []string) {
	content := strings.Join(args, " ")
	if content == "" {
		fmt.Println("Usage: task <text>")
		return
	}

	p, err := a.pages.Create(ctx, &protocol.Page{Content: content, IsTask: true})
	if err != nil {
		log.Println(err.Error())
		return
	}
	fmt.Printf("Added task %s\n", p.ID)
}

func (a *App) list(ctx context.Context, args []string) {
	filter := models.PageFilter{}
	if len(args) > 0 {
		switch args[0] {
		case "tasks":
			filter.TasksOnly = true
		case "starred":
			filter.Starred = true
		default:
			filter.FolderID = args[0]
		}
	}

	pages, err := a.pages.List(ctx, filter)
	if err != nil {
		log.Println(err.Error())
		return
	}
	if len(pages) == 0 {
		fmt.Println("No pages.")
		return
	}
	for _, p := range pages {
		fmt.Println(formatPageLine(&p))
	}
}

func (a *App) show(ctx context.Context, args []string) {
	id, err := a.resolveID(args, "Enter page id")
	if err != nil {
		log.Println(err.Error())
		return
	}

	p, err := a.pages.Get(ctx, id)
	if err != nil {
		log.Println(err.Error())
		return
	}
	fmt.Println(formatPageLine(p))
	fmt.Println(p.Content)
}

func (a *App) edit(ctx context.Context, args []string) {
	id, err := a.resolveID(args, "Enter page id")
	if err != nil {
		log.Println(err.Error())
		return
	}

	p, err := a.pages.Get(ctx, id)
	if err != nil {
		log.Println(err.Error())
		return
	}

	content, err := GetMultiline(a.reader, "Enter new content", os.Stdout)
	if err != nil {
		log.Println(err.Error())
		return
	}
	if content == "" {
		fmt.Println("Unchanged.")
		return
	}

	p.Content = content
	if _, err := a.pages.Update(ctx, p); err != nil {
		log.Println(err.Error())
		return
	}
	fmt.Println("Saved.")
}

func (a *App) remove(ctx context.Context, args []string) {
	id, err := a.resolveID(args, "Enter page id")
	if err != nil {
		log.Println(err.Error())
		return
	}
	if err := a.pages.Delete(ctx, id); err != nil {
		log.Println(err.Error())
		return
	}
	fmt.Println("Deleted.")
}

func (a *App) setDone(ctx context.Context, args []string, done bool) {
	id, err := a.resolveID(args, "Enter task id")
	if err != nil {
		log.Println(err.Error())
		return
	}
	if _, err := a.pages.SetTaskCompleted(ctx, id, done); err != nil {
		log.Println(err.Error())
		return
	}
	if done {
		fmt.Println("Done.")
	} else {
		fmt.Println("Reopened.")
	}
}

func (a *App) star(ctx context.Context, args []string, starred bool) {
	id, err := a.resolveID(args, "Enter page id")
	if err != nil {
		log.Println(err.Error())
		return
	}
	if _, err := a.pages.SetStarred(ctx, id, starred); err != nil {
		log.Println(err.Error())
		return
	}
	fmt.Println("Ok.")
}

func (a *App) resolveID(args []string, prompt string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	id, err := getSimpleText(a.reader, prompt, os.Stdout)
	if err != nil {
		return "", err
	}
	if id == "" {
		return "", fmt.Errorf("%w: id required", common.ErrorValidation)
	}
	return id, nil
}

func formatPageLine(p *protocol.Page) string {
	marker := " "
	if p.IsTask {
		if p.TaskCompleted {
			marker = "x"
		} else {
			marker = "·"
		}
	}
	star := " "
	if p.Starred {
		star = "*"
	}
	title := p.Content
	if i := strings.IndexByte(title, '\n'); i >= 0 {
		title = title[:i]
	}
	if len(title) > 60 {
		title = title[:57] + "..."
	}
	return fmt.Sprintf("%s [%s]%s %s", p.ID, marker, star, title)
}
