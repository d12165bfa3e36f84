package cli

import (
	"context"
	"fmt"
	"log"
	"strings"
)

func (a *App) mkdir(ctx context.Context, args []string) {
	name := strings.Join(args, " ")
	if name == "" {
		fmt.Println("Usage: mkdir <name>")
		return
	}

	f, err := a.folders.Create(ctx, name, "")
	if err != nil {
		log.Println(err.Error())
		return
	}
	fmt.Printf("Created folder %s (/%s)\n", f.ID, f.Slug)
}

func (a *App) listFolders(ctx context.Context) {
	fs, err := a.folders.List(ctx)
	if err != nil {
		log.Println(err.Error())
		return
	}
	if len(fs) == 0 {
		fmt.Println("No folders.")
		return
	}
	for _, f := range fs {
		fmt.Printf("%s /%s %s\n", f.ID, f.Slug, f.Name)
	}
}

func (a *App) rmdir(ctx context.Context, args []string) {
	id, err := a.resolveID(args, "Enter folder id")
	if err != nil {
		log.Println(err.Error())
		return
	}
	if err := a.folders.Delete(ctx, id); err != nil {
		log.Println(err.Error())
		return
	}
	fmt.Println("Deleted.")
}
