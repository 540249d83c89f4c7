// Package session owns the client's authentication state: the bearer token
// and a snapshot of the logged-in user.
//
// A Manager moves between two states:
//
//	Inactive --Login ok--> Active --Logout | auth_error | failed Restore--> Inactive
//
// The token and user snapshot are persisted in a kv.Store under fixed keys so
// the next run can Restore them. Restore fails closed: unless the server
// confirms the stored token and the profile can be fetched, the persisted
// state is wiped and the session stays inactive.
//
// # Basic Usage
//
//	manager := session.New(apiClient,
//		session.WithStore(store),
//		session.WithLogger(log),
//	)
//
//	if _, err := manager.Restore(ctx); err != nil {
//		log.Warn("session restore failed", logger.Error(err))
//	}
//
//	sess, err := manager.Login(ctx, api.Credentials{LoginName: "aprilludgate"})
//	if errors.Is(err, session.ErrInvalidCredentials) {
//		// show the login form error
//	}
//
// # Wiring the API Client
//
// The API client reads its token from the manager and reports auth failures
// back to it. The two are built in a cycle, so the client takes closures:
//
//	var manager *session.Manager
//	client, _ := api.New(baseURL,
//		api.WithTokenSource(func() (string, bool) { return manager.CurrentToken() }),
//		api.WithAuthErrorHook(func(ctx context.Context, err *api.Error) {
//			manager.HandleAuthError(ctx, err)
//		}),
//	)
//	manager = session.New(client, session.WithStore(store))
//
// HandleAuthError only invalidates the session when the rejected token is the
// current one; a late 401 for a token that was already replaced is ignored.
//
// # Concurrency
//
// All methods are safe for concurrent use. No lock is held while a request is
// in flight. A Login, Logout or Invalidate that happens while Restore is
// waiting on the server wins; the restore result is dropped.
//
// # Subscriptions
//
// Subscribe delivers a Session value after every state change. Values carry a
// Version and listeners never see an older version after a newer one.
package session
