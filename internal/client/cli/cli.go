package cli

import (
	"context"
	"fmt"

	"github.com/iudanet/authd/internal/client/auth"
	"github.com/iudanet/authd/internal/client/iocli"
)

type Cli struct {
	authService auth.Service
	io          iocli.IO
}

func New(authService auth.Service, io iocli.IO) *Cli {
	return &Cli{
		authService: authService,
		io:          io,
	}
}

// Run выполняет одну команду. Ошибку печатает main.
func (c *Cli) Run(ctx context.Context, command string) error {
	switch command {
	case "signup":
		return c.runSignUp(ctx)
	case "login":
		return c.runLogin(ctx)
	case "logout":
		return c.runLogout(ctx)
	case "status":
		return c.runStatus(ctx)
	case "whoami":
		return c.runWhoAmI(ctx)
	case "reset-password":
		return c.runResetPassword(ctx)
	case "change-password":
		return c.runChangePassword(ctx)
	default:
		PrintUsage()
		return fmt.Errorf("unknown command: %s", command)
	}
}

func PrintUsage() {
	fmt.Println("authd Client")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  authd-client [OPTIONS] COMMAND")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --version      Show version information")
	fmt.Println("  --server URL   Server URL (default: http://localhost:8080)")
	fmt.Println("  --db PATH      Path to local session database (default: authd-client.db)")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  signup             Register new user")
	fmt.Println("  login              Login to server")
	fmt.Println("  logout             Delete local session")
	fmt.Println("  status             Show local session status")
	fmt.Println("  whoami             Verify session token on the server")
	fmt.Println("  reset-password     Request a password reset code by email")
	fmt.Println("  change-password    Change password using a reset code")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  authd-client signup")
	fmt.Println("  authd-client login")
	fmt.Println("  authd-client --server https://auth.example.com status")
}
