package main

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"coral-threads/counts"
	"coral-threads/handlers"
	"coral-threads/internal"
	"coral-threads/store"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/redis/rueidis"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// openStore will create the document store selected by the --store flag. The
// returned function releases any connections held by the store.
func openStore(c *cli.Context) (store.Store, func(), error) {
	switch kind := c.String("store"); kind {
	case "memory":
		logrus.Warn("using the memory store, documents will not survive a restart")
		return store.NewMemory(), func() {}, nil

	case "disk":
		s, err := store.NewDisk(c.String("dataDir"))
		if err != nil {
			return nil, nil, err
		}

		return s, func() {}, nil

	case "mongo":
		databaseURI := c.String("mongoDBURI")
		if databaseURI == "" {
			return nil, nil, errors.New("--mongoDBURI is required when using the mongo store")
		}

		// Parse the database name out of the path component of the uri.
		u, err := url.Parse(databaseURI)
		if err != nil {
			return nil, nil, errors.Wrap(err, "can not parse the --mongoDBURI")
		}
		if len(u.Path) < 2 {
			return nil, nil, errors.Errorf("expected database name in path component of --mongoDBURI, found %s", u.Path)
		}
		databaseName := u.Path[1:]

		// Create a context for connecting to MongoDB.
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		// Connect to MongoDB now.
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(databaseURI))
		if err != nil {
			return nil, nil, errors.Wrap(err, "cannot connect to mongo")
		}
		closer := func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := client.Disconnect(ctx); err != nil {
				logrus.WithError(err).Error("could not disconnect from mongo")
			}
		}

		// Ensure we're connected to the primary.
		ctx, cancel = context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		if err := client.Ping(ctx, readpref.Primary()); err != nil {
			closer()
			return nil, nil, errors.Wrap(err, "cannot ping mongo")
		}

		return store.NewMongo(client.Database(databaseName), c.String("mongoCollection")), closer, nil

	case "redis":
		client, err := rueidis.NewClient(rueidis.ClientOption{
			InitAddress: []string{c.String("redisAddr")},
		})
		if err != nil {
			return nil, nil, errors.Wrap(err, "cannot connect to redis")
		}

		return store.NewRedis(client, c.String("redisPrefix")), client.Close, nil

	default:
		return nil, nil, errors.Errorf("unknown --store %q, expected one of memory, disk, mongo, redis", kind)
	}
}

func serve(c *cli.Context) error {
	s, closer, err := openStore(c)
	if err != nil {
		return errors.Wrap(err, "could not open the store")
	}
	defer closer()

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(handlers.RequestLogger(logrus.StandardLogger()))
	handlers.New(s).Register(e)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := c.String("addr")

	errs := make(chan error, 1)
	go func() {
		logrus.WithFields(logrus.Fields{
			"addr":  addr,
			"store": c.String("store"),
		}).Info("starting server")

		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
		close(errs)
	}()

	select {
	case err := <-errs:
		if err != nil {
			return errors.Wrap(err, "could not start the server")
		}
		return nil
	case <-ctx.Done():
	}

	logrus.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "could not shut down the server")
	}

	return nil
}

func recount(c *cli.Context) error {
	// Grab the parameters from the flags.
	storyIDs := c.StringSlice("storyID")
	dryRun := c.Bool("dryRun")
	disableWatcher := c.Bool("disableWatcher")

	s, closer, err := openStore(c)
	if err != nil {
		return errors.Wrap(err, "could not open the store")
	}
	defer closer()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start monitoring for updates to the documents collection to ensure that
	// we can tag any stories that might have gotten dirty since we started.
	var watcher *internal.Watcher
	if m, ok := s.(*store.Mongo); ok && !disableWatcher {
		watcher = internal.NewWatcher(m.Collection())

		logrus.Info("starting watcher")

		go func() {
			if err := watcher.Watch(ctx); err != nil {
				logrus.WithError(err).Fatal("could not watch for changes")
			}
		}()
	} else {
		logrus.Warn("not starting watcher, it needs the mongo store and no --disableWatcher")
	}

	started := time.Now()

	// Process the stories.
	if err := counts.ProcessStories(ctx, s, storyIDs, dryRun); err != nil {
		return errors.Wrap(err, "could not process stories")
	}

	// Process the users.
	if err := counts.ProcessUsers(ctx, s, storyIDs, dryRun); err != nil {
		return errors.Wrap(err, "could not process users")
	}

	// Process the site.
	if err := counts.ProcessSite(ctx, s, dryRun); err != nil {
		return errors.Wrap(err, "could not process site")
	}

	if watcher == nil {
		logrus.WithField("took", time.Since(started).String()).Info("finished processing")

		return nil
	}

	for {
		// Get all the dirty story ID's from the watcher. This will also flush these
		// events from the watcher.
		dirty, all := watcher.Dirty()
		if len(dirty) == 0 && !all {
			logrus.Info("no more dirty stories were found")
			break
		}

		// A change to the reactions document can touch any story.
		if all {
			dirty = storyIDs
		}

		// Process the dirty stories.
		if err := counts.ProcessStories(ctx, s, dirty, dryRun); err != nil {
			return errors.Wrap(err, "could not process dirty stories")
		}

		// Process the site.
		if err := counts.ProcessSite(ctx, s, dryRun); err != nil {
			return errors.Wrap(err, "could not process dirty site")
		}
	}

	logrus.WithField("took", time.Since(started).String()).Info("finished processing")

	return nil
}

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	// Values in a .env file are loaded into the environment, but never override
	// variables that are already set.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logrus.WithError(err).Warn("could not load the .env file")
	}

	app := cli.NewApp()
	app.Name = "coral-threads"
	app.Usage = "comments and reactions for stories"
	app.Version = fmt.Sprintf("%v, commit %v, built at %v", version, commit, date)
	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "store",
			Usage:   "document store to use, one of memory, disk, mongo, redis",
			Value:   "disk",
			EnvVars: []string{"STORE"},
		},
		&cli.StringFlag{
			Name:    "dataDir",
			Usage:   "directory documents are kept in when using the disk store",
			Value:   "data",
			EnvVars: []string{"DATA_DIR"},
		},
		&cli.StringFlag{
			Name:    "mongoDBURI",
			Usage:   "URI for the MongoDB instance documents are kept in when using the mongo store",
			EnvVars: []string{"MONGODB_URI"},
		},
		&cli.StringFlag{
			Name:    "mongoCollection",
			Usage:   "collection documents are kept in when using the mongo store",
			Value:   store.DefaultMongoCollection,
			EnvVars: []string{"MONGODB_COLLECTION"},
		},
		&cli.StringFlag{
			Name:    "redisAddr",
			Usage:   "address of the Redis instance documents are kept in when using the redis store",
			Value:   "127.0.0.1:6379",
			EnvVars: []string{"REDIS_ADDR"},
		},
		&cli.StringFlag{
			Name:    "redisPrefix",
			Usage:   "prefix added to every document key when using the redis store",
			Value:   "coral:",
			EnvVars: []string{"REDIS_PREFIX"},
		},
		&cli.StringFlag{
			Name:    "logLevel",
			Usage:   "level to log at",
			Value:   "info",
			EnvVars: []string{"LOG_LEVEL"},
		},
	}
	app.Before = func(c *cli.Context) error {
		level, err := logrus.ParseLevel(c.String("logLevel"))
		if err != nil {
			return errors.Wrap(err, "can not parse the --logLevel")
		}
		logrus.SetLevel(level)

		return nil
	}
	app.Commands = []*cli.Command{
		{
			Name:  "serve",
			Usage: "serve the comment and reaction endpoints over HTTP",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "addr",
					Usage:   "address to listen on",
					Value:   ":8080",
					EnvVars: []string{"ADDR"},
				},
			},
			Action: serve,
		},
		{
			Name:  "counts",
			Usage: "recompute the cached story, user and site counts",
			Flags: []cli.Flag{
				&cli.StringSliceFlag{
					Name:    "storyID",
					Usage:   "limit processing to these stories, every story is processed when omitted",
					EnvVars: []string{"STORY_IDS"},
				},
				&cli.BoolFlag{
					Name:    "dryRun",
					Usage:   "when used, this tool will not write any data to the store",
					EnvVars: []string{"DRY_RUN"},
				},
				&cli.BoolFlag{
					Name:    "disableWatcher",
					Usage:   "when used, this tool will not attempt to watch for changes to prevent races",
					EnvVars: []string{"DISABLE_WATCHER"},
				},
			},
			Action: recount,
		},
	}

	if err := app.Run(os.Args); err != nil {
		logrus.WithError(err).Fatal()
	}
}
