package main

import (
	"github.com/aapokoiv/nutrition-tracker/seed"

	"github.com/spf13/cobra"
)

var seedOpts = seed.DefaultOptions()

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Fill the database with demo users, foods and eating history",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, db, err := bootstrap()
		if err != nil {
			return err
		}
		loc, err := cfg.Location()
		if err != nil {
			return err
		}
		res, err := seed.New(db, loc, log, seedOpts.Seed).Run(cmd.Context(), seedOpts)
		if err != nil {
			return err
		}
		log.Info("seed complete",
			"users", res.Users,
			"ingredients", res.Ingredients,
			"foods", res.Foods,
			"eaten", res.Eaten,
			"password", seed.DemoPassword,
		)
		return nil
	},
}

func init() {
	f := seedCmd.Flags()
	f.IntVar(&seedOpts.Users, "users", seedOpts.Users, "number of users to create")
	f.IntVar(&seedOpts.Ingredients, "ingredients", seedOpts.Ingredients, "ingredients per user")
	f.IntVar(&seedOpts.Foods, "foods", seedOpts.Foods, "foods per user")
	f.IntVar(&seedOpts.Days, "days", seedOpts.Days, "days of eating history")
	f.IntVar(&seedOpts.MaxEatenPerDay, "max-per-day", seedOpts.MaxEatenPerDay, "maximum eaten events per day")
	f.Int64Var(&seedOpts.Seed, "seed", 0, "random seed (0 = time based)")
}
