package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/daybook-io/daybook/internal/logger"
	"github.com/daybook-io/daybook/internal/rabbit"
	"github.com/daybook-io/daybook/internal/storage"
	"github.com/daybook-io/daybook/internal/storagebuilder"
	log "github.com/sirupsen/logrus"
)

var configFile string

const (
	purgeTimeout = time.Minute * 5
	checkTimeout = time.Minute
	// Events that start within this window get a reminder published.
	remindBefore = time.Hour
	// Events that ended this long ago get purged.
	keepFor = time.Hour * 24 * 365
)

func newMessage(event storage.Event) rabbit.Message {
	return rabbit.Message{
		EventID:   event.ID,
		Title:     event.Title,
		StartDate: event.StartDate,
	}
}

func init() {
	flag.StringVar(&configFile, "config", "./configs/scheduler_config.yaml", "Path to configuration file")
	log.SetFormatter(&log.TextFormatter{})
	log.SetOutput(os.Stdout)
	log.SetLevel(log.WarnLevel)
}

func main() {
	flag.Parse()

	config, err := NewConfig(configFile)
	if err != nil {
		log.Errorf("failed to start %v", err)
		return
	}
	err = logger.PrepareLogger(config.Logger)
	if err != nil {
		log.Errorf("failed to start %v", err)
		return
	}

	r := rabbit.New(config.Rabbit)
	if err := r.Connect(); err != nil {
		log.Errorf("failed to connect to rabbit: %v", err)
		return
	}
	defer r.Close()

	stor, err := storagebuilder.New(config.Storage)
	if err != nil {
		log.Errorf("failed to start %v", err)
		return
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second*3)
		defer cancel()
		stor.Close(ctx)
	}()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer cancel()

	from := time.Now().Add(remindBefore - checkTimeout)
	to := time.Now().Add(remindBefore)
	checkTicker := time.NewTicker(checkTimeout)
	purgeTicker := time.NewTicker(purgeTimeout)
	for {
		select {
		case <-ctx.Done():
			return
		default:

			log.Debugf("get events starting between: %s - %s", from, to)
			events, err := stor.GetEventsStartingBetween(ctx, from, to)
			if err != nil {
				log.Errorf("failed to get events: %s", err)
				continue
			}
			for _, event := range events {
				log.Debugf("send reminder: %v", event)
				m := newMessage(event)
				data, _ := json.Marshal(m)
				if err := r.Publish(data); err != nil {
					log.Errorf("failed to publish reminder: %v", err)
				}
			}
			select {
			case <-ctx.Done():
				return
			case <-checkTicker.C:
				from = to
				to = time.Now().Add(remindBefore)
			case <-purgeTicker.C:
				if err := stor.PurgeEndedBefore(ctx, time.Now().Add(-keepFor)); err != nil {
					log.Errorf("failed to purge old events: %v", err)
				}
			}
		}
	}
}
