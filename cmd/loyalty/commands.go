package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"

	"scaleplus-loyalty/pkg/errutil"
	"scaleplus-loyalty/pkg/health"
	"scaleplus-loyalty/pkg/pagination"
	"scaleplus-loyalty/services/catalog"
	"scaleplus-loyalty/services/loyalty"
	"scaleplus-loyalty/services/member"
)

type runtime struct {
	svc    *loyalty.Service
	health health.HealthService
}

type command struct {
	name    string
	summary string
	run     func(ctx context.Context, rt *runtime, args []string) (any, error)
}

var commands = []command{
	{"seed", "write demo users and rewards into an empty store", runSeed},
	{"users", "list users", runUsers},
	{"register", "register a user", runRegister},
	{"profile", "show or edit a user's profile", runProfile},
	{"grant", "grant points to a user", runGrant},
	{"set-points", "overwrite a user's balance without a ledger entry", runSetPoints},
	{"redeem", "redeem a reward for a user", runRedeem},
	{"history", "page through a user's transactions", runHistory},
	{"verify", "verify a user's ledger hash chain", runVerify},
	{"progress", "show a user's progress to the next tier", runProgress},
	{"rewards", "list rewards, or their availability for --user", runRewards},
	{"reward-add", "add a reward", runRewardAdd},
	{"reward-update", "update a reward", runRewardUpdate},
	{"reward-delete", "delete a reward", runRewardDelete},
	{"mechanics", "list earning mechanics", runMechanics},
	{"mechanic-add", "add an earning mechanic", runMechanicAdd},
	{"mechanic-update", "update an earning mechanic", runMechanicUpdate},
	{"mechanic-delete", "delete an earning mechanic", runMechanicDelete},
	{"health", "check the storage backend", runHealth},
}

func lookup(name string) (command, bool) {
	for _, c := range commands {
		if c.name == name {
			return c, true
		}
	}
	return command{}, false
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "usage: loyalty <command> [flags]")
	fmt.Fprintln(w)
	for _, c := range commands {
		fmt.Fprintf(w, "  %-16s %s\n", c.name, c.summary)
	}
}

func newFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SortFlags = false
	return fs
}

func parse(fs *pflag.FlagSet, args []string, required ...string) error {
	if err := fs.Parse(args); err != nil {
		return errutil.BadRequest("invalid flags", err)
	}
	var details []errutil.Detail
	for _, name := range required {
		if !fs.Changed(name) {
			details = append(details, errutil.Detail{Field: name, Message: "is required"})
		}
	}
	if len(details) > 0 {
		return errutil.New(errutil.StatusBadRequest, "missing flags", errutil.WithDetails(details...))
	}
	return nil
}

func runSeed(ctx context.Context, rt *runtime, args []string) (any, error) {
	if err := parse(newFlagSet("seed"), args); err != nil {
		return nil, err
	}
	seeded, err := rt.svc.Seed(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]bool{"seeded": seeded}, nil
}

func runUsers(ctx context.Context, rt *runtime, args []string) (any, error) {
	if err := parse(newFlagSet("users"), args); err != nil {
		return nil, err
	}
	return rt.svc.Members.List(), nil
}

func runRegister(ctx context.Context, rt *runtime, args []string) (any, error) {
	fs := newFlagSet("register")
	name := fs.String("name", "", "display name")
	email := fs.String("email", "", "email address, unique ignoring case")
	phone := fs.String("phone", "", "phone number")
	image := fs.String("image", "", "profile image url")
	if err := parse(fs, args, "name", "email"); err != nil {
		return nil, err
	}
	return rt.svc.Members.Register(ctx, loyalty.Registration{
		Name:            *name,
		Email:           *email,
		Phone:           *phone,
		ProfileImageURL: *image,
	})
}

func runProfile(ctx context.Context, rt *runtime, args []string) (any, error) {
	fs := newFlagSet("profile")
	userID := fs.String("user", "", "user id")
	name := fs.String("name", "", "new display name")
	email := fs.String("email", "", "new email address")
	phone := fs.String("phone", "", "new phone number")
	image := fs.String("image", "", "new profile image url")
	if err := parse(fs, args, "user"); err != nil {
		return nil, err
	}

	var p member.Profile
	if fs.Changed("name") {
		p.Name = name
	}
	if fs.Changed("email") {
		p.Email = email
	}
	if fs.Changed("phone") {
		p.Phone = phone
	}
	if fs.Changed("image") {
		p.ProfileImageURL = image
	}
	if p == (member.Profile{}) {
		return rt.svc.Members.Get(*userID)
	}
	return rt.svc.Members.UpdateProfile(ctx, *userID, p)
}

func runGrant(ctx context.Context, rt *runtime, args []string) (any, error) {
	fs := newFlagSet("grant")
	userID := fs.String("user", "", "user id")
	points := fs.Int64("points", 0, "points before the tier multiplier")
	description := fs.String("description", "", "ledger description")
	if err := parse(fs, args, "user", "points"); err != nil {
		return nil, err
	}
	return rt.svc.Grants.Grant(ctx, *userID, *points, *description)
}

func runSetPoints(ctx context.Context, rt *runtime, args []string) (any, error) {
	fs := newFlagSet("set-points")
	userID := fs.String("user", "", "user id")
	points := fs.Int64("points", 0, "new balance")
	if err := parse(fs, args, "user", "points"); err != nil {
		return nil, err
	}
	return rt.svc.Grants.SetPoints(ctx, *userID, *points)
}

func runRedeem(ctx context.Context, rt *runtime, args []string) (any, error) {
	fs := newFlagSet("redeem")
	userID := fs.String("user", "", "user id")
	rewardID := fs.String("reward", "", "reward id")
	if err := parse(fs, args, "user", "reward"); err != nil {
		return nil, err
	}
	return rt.svc.Redemptions.Redeem(ctx, *userID, *rewardID)
}

func runHistory(ctx context.Context, rt *runtime, args []string) (any, error) {
	fs := newFlagSet("history")
	userID := fs.String("user", "", "user id")
	limit := fs.Int("limit", pagination.DefaultLimit, "page size")
	cursor := fs.String("cursor", "", "nextCursor from the previous page")
	if err := parse(fs, args, "user"); err != nil {
		return nil, err
	}
	if _, err := rt.svc.Members.Get(*userID); err != nil {
		return nil, err
	}
	return rt.svc.Ledger.History(*userID, pagination.Pagination{Cursor: *cursor, Limit: *limit})
}

func runVerify(ctx context.Context, rt *runtime, args []string) (any, error) {
	fs := newFlagSet("verify")
	userID := fs.String("user", "", "user id")
	if err := parse(fs, args, "user"); err != nil {
		return nil, err
	}
	return rt.svc.Ledger.VerifyChain(*userID), nil
}

func runProgress(ctx context.Context, rt *runtime, args []string) (any, error) {
	fs := newFlagSet("progress")
	userID := fs.String("user", "", "user id")
	if err := parse(fs, args, "user"); err != nil {
		return nil, err
	}
	return rt.svc.Members.Progress(*userID)
}

func runRewards(ctx context.Context, rt *runtime, args []string) (any, error) {
	fs := newFlagSet("rewards")
	userID := fs.String("user", "", "report availability for this user")
	if err := parse(fs, args); err != nil {
		return nil, err
	}
	if *userID != "" {
		return rt.svc.Catalog.Availability(*userID)
	}
	return rt.svc.Catalog.ListRewards(), nil
}

// rewardFlags binds the editable reward fields. A negative stock means
// unlimited.
type rewardFlags struct {
	name        *string
	description *string
	points      *int64
	stock       *int64
	image       *string
}

func bindRewardFlags(fs *pflag.FlagSet) rewardFlags {
	return rewardFlags{
		name:        fs.String("name", "", "reward name"),
		description: fs.String("description", "", "reward description"),
		points:      fs.Int64("points", 0, "points required"),
		stock:       fs.Int64("stock", -1, "units available, negative for unlimited"),
		image:       fs.String("image", "", "image url"),
	}
}

func (f rewardFlags) apply(fs *pflag.FlagSet, r *catalog.Reward) {
	if fs.Changed("name") {
		r.Name = *f.name
	}
	if fs.Changed("description") {
		r.Description = *f.description
	}
	if fs.Changed("points") {
		r.PointsRequired = *f.points
	}
	if fs.Changed("stock") {
		r.Stock = nil
		if *f.stock >= 0 {
			r.Stock = catalog.Stock(*f.stock)
		}
	}
	if fs.Changed("image") {
		r.ImageURL = *f.image
	}
}

func runRewardAdd(ctx context.Context, rt *runtime, args []string) (any, error) {
	fs := newFlagSet("reward-add")
	id := fs.String("id", "", "reward id, generated when empty")
	flags := bindRewardFlags(fs)
	if err := parse(fs, args, "name", "points"); err != nil {
		return nil, err
	}
	reward := catalog.Reward{ID: *id}
	flags.apply(fs, &reward)
	return rt.svc.Catalog.AddReward(ctx, reward)
}

func runRewardUpdate(ctx context.Context, rt *runtime, args []string) (any, error) {
	fs := newFlagSet("reward-update")
	id := fs.String("id", "", "reward id")
	flags := bindRewardFlags(fs)
	if err := parse(fs, args, "id"); err != nil {
		return nil, err
	}
	reward, err := rt.svc.Catalog.GetReward(*id)
	if err != nil {
		return nil, err
	}
	flags.apply(fs, &reward)
	return rt.svc.Catalog.UpdateReward(ctx, reward)
}

func runRewardDelete(ctx context.Context, rt *runtime, args []string) (any, error) {
	fs := newFlagSet("reward-delete")
	id := fs.String("id", "", "reward id")
	if err := parse(fs, args, "id"); err != nil {
		return nil, err
	}
	if err := rt.svc.Catalog.DeleteReward(ctx, *id); err != nil {
		return nil, err
	}
	return map[string]string{"deleted": *id}, nil
}

func runMechanics(ctx context.Context, rt *runtime, args []string) (any, error) {
	fs := newFlagSet("mechanics")
	active := fs.Bool("active", false, "only active mechanics")
	search := fs.String("search", "", "filter by title or description")
	if err := parse(fs, args); err != nil {
		return nil, err
	}
	if strings.TrimSpace(*search) != "" {
		return rt.svc.Catalog.SearchMechanics(*search), nil
	}
	return rt.svc.Catalog.ListMechanics(*active), nil
}

func runMechanicAdd(ctx context.Context, rt *runtime, args []string) (any, error) {
	fs := newFlagSet("mechanic-add")
	title := fs.String("title", "", "mechanic title")
	description := fs.String("description", "", "mechanic description")
	active := fs.Bool("active", true, "whether members can use it now")
	if err := parse(fs, args, "title"); err != nil {
		return nil, err
	}
	return rt.svc.Catalog.AddMechanic(ctx, loyalty.MechanicInput{
		Title:       *title,
		Description: *description,
		IsActive:    active,
	})
}

func runMechanicUpdate(ctx context.Context, rt *runtime, args []string) (any, error) {
	fs := newFlagSet("mechanic-update")
	id := fs.String("id", "", "mechanic id")
	title := fs.String("title", "", "mechanic title")
	description := fs.String("description", "", "mechanic description")
	active := fs.Bool("active", true, "whether members can use it now")
	if err := parse(fs, args, "id"); err != nil {
		return nil, err
	}
	mechanic, err := rt.svc.Catalog.GetMechanic(*id)
	if err != nil {
		return nil, err
	}
	if fs.Changed("title") {
		mechanic.Title = *title
	}
	if fs.Changed("description") {
		mechanic.Description = *description
	}
	if fs.Changed("active") {
		mechanic.IsActive = *active
	}
	return rt.svc.Catalog.UpdateMechanic(ctx, mechanic)
}

func runMechanicDelete(ctx context.Context, rt *runtime, args []string) (any, error) {
	fs := newFlagSet("mechanic-delete")
	id := fs.String("id", "", "mechanic id")
	if err := parse(fs, args, "id"); err != nil {
		return nil, err
	}
	if err := rt.svc.Catalog.DeleteMechanic(ctx, *id); err != nil {
		return nil, err
	}
	return map[string]string{"deleted": *id}, nil
}

func runHealth(ctx context.Context, rt *runtime, args []string) (any, error) {
	if err := parse(newFlagSet("health"), args); err != nil {
		return nil, err
	}
	report := rt.health.Readiness(ctx)
	if report.Status != health.StatusHealthy {
		return nil, errutil.New(errutil.StatusUnavailable, report.Message, errutil.WithDetail(report.Deps[0].Name, report.Deps[0].Message))
	}
	return report, nil
}
