package ingest

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"caption-eval-compare/backend/internal/coreengine/resultset"
	"caption-eval-compare/backend/internal/datastore"
)

// Ingester loads result sets and publishes them to a session store. A
// failed ingestion leaves the current session in place.
type Ingester struct {
	Source Source
	Store  *datastore.SessionStore
	Log    logrus.FieldLogger
}

func New(src Source, store *datastore.SessionStore, log logrus.FieldLogger) *Ingester {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Ingester{Source: src, Store: store, Log: log}
}

// Ingest loads name from the configured source.
func (in *Ingester) Ingest(ctx context.Context, name string) (*datastore.Session, error) {
	log := in.Log.WithFields(logrus.Fields{"source": in.Source.String(), "input": name})
	raw, err := in.Source.Load(ctx, name)
	if err != nil {
		log.WithError(err).Warn("load failed")
		return nil, fmt.Errorf("loading %q: %w", name, err)
	}
	log.Debugf("loaded %d categories", len(raw.Categories()))
	return in.Accept(in.Source.String()+"/"+name, raw)
}

// Accept normalizes an already loaded result set and publishes it.
func (in *Ingester) Accept(source string, raw *resultset.RawResultSet) (*datastore.Session, error) {
	log := in.Log.WithField("source", source)
	set, err := resultset.Normalize(raw)
	if err != nil {
		log.WithError(err).Warn("normalize failed")
		return nil, err
	}
	sess := in.Store.Replace(source, set)
	log.WithFields(logrus.Fields{"session": sess.ID, "results": set.Len()}).Info("session replaced")
	return sess, nil
}

// Load is a one-shot ingestion for command line use: it returns the
// normalized set without touching any store.
func Load(ctx context.Context, src Source, name string) (*resultset.ResultSet, error) {
	raw, err := src.Load(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("loading %q: %w", name, err)
	}
	return resultset.Normalize(raw)
}
