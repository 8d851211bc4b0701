package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/erazemk/popis/internal/auth"
	"github.com/erazemk/popis/internal/backup"
	"github.com/erazemk/popis/internal/config"
	"github.com/erazemk/popis/internal/credential"
	"github.com/erazemk/popis/internal/export"
	"github.com/erazemk/popis/internal/history"
	"github.com/erazemk/popis/internal/model"
	"github.com/erazemk/popis/internal/query"
	"github.com/erazemk/popis/internal/stats"
	"github.com/erazemk/popis/internal/store"
)

// listOptions are the flags of the list command.
type listOptions struct {
	query     string
	category  string
	location  string
	important bool
	photos    string
	sort      string
	recent    int
}

// buildSearch turns list flags into a search and a sort order. An empty
// order with a query means relevance.
func buildSearch(opts listOptions, categories []model.Category, settings model.AppSettings) (query.Advanced, string, error) {
	a := query.Advanced{
		Query: strings.TrimSpace(opts.query),
		Criteria: query.Criteria{
			Location:      opts.location,
			CaseSensitive: settings.CaseSensitiveSearch,
			ImportantOnly: opts.important,
		},
	}

	if opts.category != "" {
		for name := range strings.SplitSeq(opts.category, ",") {
			name = strings.TrimSpace(name)
			found := false
			for _, c := range categories {
				if strings.EqualFold(c.Name, name) {
					a.CategoryIDs = append(a.CategoryIDs, c.ID)
					found = true
				}
			}
			if !found {
				return a, "", fmt.Errorf("unknown category %q", name)
			}
		}
	}

	switch opts.photos {
	case "":
	case "with":
		a.WithPhotosOnly = true
	case "without":
		a.WithoutPhotosOnly = true
	default:
		return a, "", fmt.Errorf("-photos must be 'with' or 'without'")
	}

	sortBy := opts.sort
	if sortBy == "" && a.Query == "" {
		sortBy = string(settings.DefaultSortOption)
	}
	if sortBy != "" {
		if _, err := model.ParseSortOption(sortBy); err != nil {
			return a, "", err
		}
	}
	return a, sortBy, nil
}

func cmdList(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)

	var opts listOptions
	fs.StringVar(&opts.query, "query", "", "")
	fs.StringVar(&opts.query, "q", "", "")
	fs.StringVar(&opts.category, "category", "", "")
	fs.StringVar(&opts.location, "location", "", "")
	fs.BoolVar(&opts.important, "important", false, "")
	fs.StringVar(&opts.photos, "photos", "", "")
	fs.StringVar(&opts.sort, "sort", "", "")
	fs.StringVar(&opts.sort, "s", "", "")
	fs.IntVar(&opts.recent, "recent", 0, "")

	fs.Usage = func() {
		fmt.Fprint(os.Stdout, `Usage: popis list [flags]

Flags:
  -q, -query <text>        search name, description, location, notes and category
  -category <names>        comma-separated category names
  -location <text>         location contains text
  -important               only important items
  -photos with|without     only items with or without photos
  -s, -sort <order>        nameAscending, dateNewest, dateOldest, category, location
  -recent <n>              show the n most recently added items
`)
	}
	if err := fs.Parse(args); err != nil {
		return err
	}

	a, err := openApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.close()

	items, categories, _ := a.catalog.Snapshot(ctx)

	if opts.recent > 0 {
		fmt.Println(renderItems(a.catalog.RecentItems(ctx, opts.recent), categories))
		return nil
	}

	settings, err := a.store.LoadSettings(ctx)
	if err != nil {
		return err
	}
	search, sortBy, err := buildSearch(opts, categories, settings)
	if err != nil {
		return err
	}

	items = query.AdvancedSearch(items, categories, search)
	if sortBy == "" {
		items = query.SortByRelevance(search.Query, items)
	} else {
		items = query.Sort(items, model.SortOption(sortBy), categories)
	}

	if search.Query != "" {
		if err := history.NewRecorder(a.store).Add(ctx, search.Query); err != nil {
			slog.Warn("failed to record search", "error", err)
		}
	}

	fmt.Println(renderItems(items, categories))
	return nil
}

func cmdStats(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("stats", flag.ContinueOnError)

	var category string
	fs.StringVar(&category, "category", "", "")

	fs.Usage = func() {
		fmt.Fprint(os.Stdout, `Usage: popis stats [flags]

Flags:
  -category <name>   show statistics for one category
`)
	}
	if err := fs.Parse(args); err != nil {
		return err
	}

	a, err := openApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.close()

	items, categories, _ := a.catalog.Snapshot(ctx)

	if category != "" {
		for _, c := range categories {
			if strings.EqualFold(c.Name, category) {
				fmt.Println(renderCategoryStats(c, stats.ForCategory(items, c.ID)))
				return nil
			}
		}
		return fmt.Errorf("unknown category %q", category)
	}

	state, err := a.store.LoadAppState(ctx)
	if err != nil {
		return err
	}
	fmt.Println(renderSummary(stats.Compute(items, categories), state))
	return nil
}

func cmdExport(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)

	var out string
	fs.StringVar(&out, "out", "", "")
	fs.StringVar(&out, "o", "", "")

	fs.Usage = func() {
		fmt.Fprint(os.Stdout, `Usage: popis export [flags]

Flags:
  -o, -out <path>   write to a file instead of stdout
`)
	}
	if err := fs.Parse(args); err != nil {
		return err
	}

	a, err := openApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.close()

	items, categories, _ := a.catalog.Snapshot(ctx)

	var w io.Writer = os.Stdout
	if out != "" {
		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("creating export file: %w", err)
		}
		defer f.Close()
		w = f
	}

	if err := export.WriteCSV(w, items, categories); err != nil {
		return err
	}
	if out != "" {
		fmt.Println(success(fmt.Sprintf("exported %d item(s) to %s", len(items), out)))
	}
	return nil
}

func cmdBackup(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("backup", flag.ContinueOnError)

	var setSecret bool
	fs.BoolVar(&setSecret, "set-secret", false, "")

	fs.Usage = func() {
		fmt.Fprint(os.Stdout, `Usage: popis backup [flags]

Uploads catalog.json, items.csv and all photos to the bucket configured
under 'backup' in the config file.

Flags:
  -set-secret   store the S3 secret key in the OS keyring and exit
`)
	}
	if err := fs.Parse(args); err != nil {
		return err
	}

	creds, err := credential.Open()
	if err != nil {
		return err
	}

	if setSecret {
		secret, err := promptSecret(os.Stdout, "S3 secret key: ")
		if err != nil {
			return err
		}
		if err := creds.Set(credential.BackupSecretKey, secret); err != nil {
			return err
		}
		fmt.Println(success("secret key stored in keyring"))
		return nil
	}

	if cfg.Backup.Bucket == "" {
		return backup.ErrNoBucket
	}

	var secret string
	if cfg.Backup.AccessKey != "" {
		secret, err = creds.Get(credential.BackupSecretKey)
		if errors.Is(err, credential.ErrNotFound) {
			return fmt.Errorf("no secret key stored, run 'popis backup -set-secret' first")
		}
		if err != nil {
			return err
		}
	}

	client, err := backup.NewS3Client(ctx, cfg.Backup, secret)
	if err != nil {
		return err
	}

	a, err := openApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.close()

	res, err := backup.NewRunner(client, cfg.Backup.Bucket, cfg.Backup.Prefix, a.catalog, a.photos, a.store).Run(ctx)
	if err != nil {
		return err
	}

	fmt.Println(success(fmt.Sprintf("uploaded %d object(s) to s3://%s/%s", res.Objects, cfg.Backup.Bucket, res.Prefix)))
	if res.Skipped > 0 {
		fmt.Println(dimStyle.Render(fmt.Sprintf("%d photo(s) skipped", res.Skipped)))
	}
	return nil
}

// setPasscode prompts for a new passcode twice and stores its hash.
func setPasscode(ctx context.Context, s *store.Store, w io.Writer) error {
	first, err := promptSecret(w, "New passcode: ")
	if err != nil {
		return err
	}
	second, err := promptSecret(w, "Repeat passcode: ")
	if err != nil {
		return err
	}
	if first != second {
		return errors.New("passcodes do not match")
	}

	hash, err := auth.HashPasscode(first)
	if err != nil {
		return err
	}
	return s.SetPasscodeHash(ctx, hash)
}

func cmdPasscode(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("passcode", flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stdout, "Usage: popis passcode\n\nSets the passcode used to log in to the API (at least %d characters).\n", auth.MinPasscodeLength)
	}
	if err := fs.Parse(args); err != nil {
		return err
	}

	a, err := openApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.close()

	if err := setPasscode(ctx, a.store, os.Stdout); err != nil {
		return err
	}
	fmt.Println(success("passcode updated"))
	return nil
}

func cmdReset(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("reset", flag.ContinueOnError)

	var yes bool
	fs.BoolVar(&yes, "yes", false, "")
	fs.BoolVar(&yes, "y", false, "")

	fs.Usage = func() {
		fmt.Fprint(os.Stdout, `Usage: popis reset [flags]

Deletes every item, category, location, photo and search history entry.
Settings and the passcode are kept.

Flags:
  -y, -yes   do not ask for confirmation
`)
	}
	if err := fs.Parse(args); err != nil {
		return err
	}

	if !yes && !confirm(os.Stdin, os.Stdout, "Delete all data?") {
		fmt.Println(dimStyle.Render("aborted"))
		return nil
	}

	a, err := openApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.catalog.Reset(ctx); err != nil {
		return err
	}
	fmt.Println(success("all data cleared"))
	return nil
}
