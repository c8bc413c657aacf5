package cmd

import (
	"context"
	"sync"

	"github.com/kazem-mohamed/socialhub-app/pkg/output"
	"github.com/kazem-mohamed/socialhub-app/pkg/session"
	"github.com/spf13/cobra"
)

var (
	sessMu sync.Mutex
	sess   *session.Session
)

// openSession returns the process session, building it on first use
func openSession() (*session.Session, error) {
	sessMu.Lock()
	defer sessMu.Unlock()
	if sess != nil {
		return sess, nil
	}
	s, err := session.FromConfig()
	if err != nil {
		return nil, err
	}
	sess = s
	return sess, nil
}

func closeSession() {
	sessMu.Lock()
	s := sess
	sess = nil
	sessMu.Unlock()
	if s != nil {
		s.Close()
	}
}

// action is a command body that needs a session
type action func(ctx context.Context, s *session.Session, p *output.Printer, args []string) error

// withSession adapts an action to cobra and requires a login
func withSession(fn action) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		if err := s.RequireAuth(); err != nil {
			return err
		}
		return fn(cmd.Context(), s, output.New(), args)
	}
}
