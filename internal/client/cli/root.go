package cli

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"
)

func (a *App) getStatus() string {
	s := ""
	if a.userName != "" {
		s = a.userName
	}
	st := a.syncer.Status(context.Background())
	if st.Pending > 0 {
		s = strings.TrimSpace(s + fmt.Sprintf(" %d pending", st.Pending))
	}
	if !st.Visible {
		s = strings.TrimSpace(s + " paused")
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

// Root runs the read-eval-print loop until EOF or exit.
func (a *App) Root(ctx context.Context) {
	log.Println("Welcome to Inkwell CLI (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Printf("ink %s> ", a.getStatus())
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				fmt.Println("Available commands: add, task, (l)ist, show, edit, rm, done, undone, star, unstar, mkdir, folders, rmdir, sync, status, pause, resume, logout, exit")
			} else {
				fmt.Println("Available commands: register, login, add, task, (l)ist, show, edit, rm, exit")
			}

		case "register":
			if err := a.Register(ctx); err != nil {
				log.Println(err.Error())
			}
		case "login":
			if err := a.Login(ctx); err != nil {
				log.Println(err.Error())
			}
		case "logout":
			if err := a.Logout(ctx); err != nil {
				log.Println(err.Error())
			}
		case "add":
			a.add(ctx, args)
		case "task":
			a.addTask(ctx, args)
		case "l", "list":
			a.list(ctx, args)
		case "show":
			a.show(ctx, args)
		case "edit":
			a.edit(ctx, args)
		case "rm", "delete":
			a.remove(ctx, args)
		case "done":
			a.setDone(ctx, args, true)
		case "undone":
			a.setDone(ctx, args, false)
		case "star":
			a.star(ctx, args, true)
		case "unstar":
			a.star(ctx, args, false)
		case "mkdir":
			a.mkdir(ctx, args)
		case "folders":
			a.listFolders(ctx)
		case "rmdir":
			a.rmdir(ctx, args)
		case "sync":
			a.syncer.Kick()
			fmt.Println("Sync requested.")
		case "status":
			a.printStatus(ctx)
		case "pause":
			a.syncer.SetVisible(false)
			fmt.Println("Sync paused.")
		case "resume":
			a.syncer.SetVisible(true)
			fmt.Println("Sync resumed.")
		case "exit", "quit":
			fmt.Println("Bye!")
			return
		default:
			fmt.Println("Unknown command:", cmd)
		}
	}
}

func (a *App) printStatus(ctx context.Context) {
	st := a.syncer.Status(ctx)
	fmt.Printf("pending ops: %d\n", st.Pending)
	if !st.LastSyncAt.IsZero() {
		fmt.Printf("last sync:   %s\n", st.LastSyncAt.Format("15:04:05"))
	}
	if st.LastError != "" {
		fmt.Printf("last error:  %s\n", st.LastError)
	}
	if !st.Visible {
		fmt.Println("sync is paused")
	}
}
