package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dmitrijs2005/tutorsync/internal/client/accounts"
	"github.com/dmitrijs2005/tutorsync/internal/client/activity"
	"github.com/dmitrijs2005/tutorsync/internal/client/community"
	"github.com/dmitrijs2005/tutorsync/internal/client/config"
	"github.com/dmitrijs2005/tutorsync/internal/client/contentadmin"
	"github.com/dmitrijs2005/tutorsync/internal/client/genai"
	"github.com/dmitrijs2005/tutorsync/internal/client/giftcodes"
	"github.com/dmitrijs2005/tutorsync/internal/client/keys"
	"github.com/dmitrijs2005/tutorsync/internal/client/lesson"
	"github.com/dmitrijs2005/tutorsync/internal/client/localstore"
	"github.com/dmitrijs2005/tutorsync/internal/client/models"
	"github.com/dmitrijs2005/tutorsync/internal/client/recyclebin"
	"github.com/dmitrijs2005/tutorsync/internal/client/remote"
	"github.com/dmitrijs2005/tutorsync/internal/client/snapshot"
	"github.com/dmitrijs2005/tutorsync/internal/client/syllabus"
	"github.com/dmitrijs2005/tutorsync/internal/client/synccache"
	"github.com/dmitrijs2005/tutorsync/internal/client/watch"
	"github.com/dmitrijs2005/tutorsync/internal/common"
	"github.com/dmitrijs2005/tutorsync/internal/filex"
	"github.com/dmitrijs2005/tutorsync/internal/logging"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	logFile  io.Closer
	local    localstore.Store
	cache    *synccache.Cache
	registry snapshot.Registry
	bin      *recyclebin.Bin
	accounts *accounts.Service
	codes    *giftcodes.Service
	social   *community.Service
	activity *activity.Log
	syllabus *syllabus.Service
	lessons  *lesson.Service
	admin    *contentadmin.Service
	poller   *watch.Poller
	sched    *watch.Scheduler
	reader   *bufio.Reader
	out      io.Writer
	now      func() time.Time

	mu   sync.Mutex
	user *models.User
	mode Mode
}

// NewApp opens the local store, applies the deployment snapshot, connects
// the sync cache and builds the services the console drives.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	dir, err := filex.EnsureDir(c.DataDir)
	if err != nil {
		return nil, fmt.Errorf("data dir: %w", err)
	}

	logOut, err := os.OpenFile(filepath.Join(dir, c.LogFile), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("log file: %w", err)
	}
	logger, err := logging.NewJSON(logOut, c.LogLevel)
	if err != nil {
		_ = logOut.Close()
		return nil, err
	}

	local, err := localstore.Open(ctx, c.StoreDriver, dir)
	if err != nil {
		_ = logOut.Close()
		return nil, fmt.Errorf("local store: %w", err)
	}

	snapshot.Boot(ctx, local, c.SnapshotPath, logger)

	dial := func(ctx context.Context) (remote.Store, error) {
		return remote.Dial(c.ServerEndpointAddr, remote.Options{
			Secret:        []byte(c.SecretKey),
			TokenValidity: c.TokenValidity,
			Timeout:       c.RemoteTimeout,
		})
	}
	cache := synccache.New(ctx, local, dial, logger, synccache.Options{InitTimeout: c.RemoteTimeout})

	gen := genai.New(genai.Options{BaseURL: c.GenAIBaseURL, Model: c.GenAIModel, Keys: c.GenAIKeys})

	a := newApp(c, logger, local, cache, gen)
	a.logFile = logOut
	return a, nil
}

func newApp(c *config.Config, logger logging.Logger, local localstore.Store, cache *synccache.Cache, gen *genai.Client) *App {
	bin := recyclebin.New(local)
	acc := accounts.NewService(local, bin)
	actLog := activity.New(local, common.AdminSubject)

	a := &App{
		config:   c,
		logger:   logger,
		local:    local,
		cache:    cache,
		bin:      bin,
		accounts: acc,
		codes:    giftcodes.NewService(local, acc),
		social:   community.NewService(local, acc),
		activity: actLog,
		syllabus: syllabus.NewService(local, gen, bin, logger, syllabus.Options{}),
		lessons:  lesson.NewService(cache, gen, local, logger),
		admin:    contentadmin.NewService(cache, actLog, bin, logger),
		poller:   watch.NewPoller(local, logger),
		sched:    watch.NewScheduler(logger),
		reader:   bufio.NewReader(os.Stdin),
		out:      os.Stdout,
		now:      time.Now,
		mode:     ModeOffline,
	}
	if reg, ok := cache.Remote().(snapshot.Registry); ok && cache.CheckConnection() {
		a.registry = reg
		a.mode = ModeOnline
	}

	a.poller.Watch(keys.CurrentUser, keys.Users, keys.DataVersion, keys.SystemSettings)
	a.poller.Subscribe(a.onLocalChange)
	return a
}

func (a *App) setMode(ctx context.Context, mode Mode) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.mode != mode {
		a.mode = mode
		a.logger.Info(ctx, "connectivity changed", "mode", string(mode))
	}
}

func (a *App) currentUser() *models.User {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.user
}

func (a *App) setUser(u *models.User) {
	a.mu.Lock()
	a.user = u
	a.mu.Unlock()
}

func (a *App) isLoggedIn() bool {
	return a.currentUser() != nil
}

func (a *App) isAdmin() bool {
	u := a.currentUser()
	return u != nil && u.IsAdmin()
}

func (a *App) getStatus() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	s := string(a.mode)
	if a.user != nil {
		s = a.user.Name + " " + s
	}
	return "(" + s + ")"
}

// checkOnline refreshes the status line. The sync cache keeps the
// connection state it found at startup.
func (a *App) checkOnline(ctx context.Context) {
	rs := a.cache.Remote()
	if rs == nil {
		return
	}
	pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rs.Ping(pctx); err != nil {
		a.setMode(ctx, ModeOffline)
		return
	}
	a.setMode(ctx, ModeOnline)
}

// onLocalChange reloads the signed-in user when another process changed it.
func (a *App) onLocalChange(ctx context.Context, changed []string) {
	a.logger.Debug(ctx, "local store changed", "keys", changed)

	u, err := a.accounts.CurrentUser(ctx)
	if err != nil {
		a.logger.Warn(ctx, "reload current user failed", "error", err)
		return
	}
	a.setUser(u)
}

// startJobs registers the background jobs and starts the scheduler. stop
// cancels it and returns once no job is running any more.
func (a *App) startJobs(ctx context.Context) (stop func(), err error) {
	ctx, cancel := context.WithCancel(ctx)
	defer func() {
		if err != nil {
			cancel()
		}
	}()

	if err := a.poller.Register(ctx, a.sched, a.config.RefreshInterval); err != nil {
		return nil, err
	}
	if err := a.sched.Every(a.config.OnlineCheckInterval, func() { a.checkOnline(ctx) }); err != nil {
		return nil, err
	}
	if err := a.sched.Add("@daily", func() {
		n, err := a.bin.PurgeExpired(ctx)
		if err != nil {
			a.logger.Error(ctx, "recycle bin purge failed", "error", err)
			return
		}
		a.logger.Info(ctx, "recycle bin purged", "removed", n)
	}); err != nil {
		return nil, err
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		a.sched.Run(ctx)
	}()
	return func() {
		cancel()
		<-done
	}, nil
}

// Run blocks until the user exits, then stops the background jobs, flushes
// pending remote writes and closes the stores.
func (a *App) Run(ctx context.Context) error {
	stop, err := a.startJobs(ctx)
	if err != nil {
		return err
	}
	defer a.close(ctx)
	defer stop()

	a.Root(ctx)
	return nil
}

func (a *App) close(ctx context.Context) {
	a.cache.Wait()
	if err := a.cache.Close(); err != nil {
		a.logger.Warn(ctx, "close sync cache", "error", err)
	}
	if err := a.local.Close(); err != nil {
		a.logger.Warn(ctx, "close local store", "error", err)
	}
	if a.logFile != nil {
		_ = a.logFile.Close()
	}
}

// Root restores the signed-in user, creates the administrator on first run
// and then runs the REPL on stdin.
func (a *App) Root(ctx context.Context) {
	printlnFn("Welcome to tutorsync (type 'help' for commands)")

	if u, err := a.accounts.CurrentUser(ctx); err == nil {
		a.setUser(u)
	}

	users, err := a.accounts.List(ctx)
	if err == nil && len(users) == 0 {
		printlnFn("No accounts yet, create the administrator.")
		if err := a.SetupAdmin(ctx); err != nil {
			printlnFn("Error:", err)
		}
	}

	runREPL(ctx, a, a.commands(), a.getStatus, a.reader)
}
