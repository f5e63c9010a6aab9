package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sandeepkv93/symbio/internal/model"
	"github.com/sandeepkv93/symbio/internal/update"
)

func walletCmd(flags *globalFlags) *cobra.Command {
	var currency string
	cmd := &cobra.Command{
		Use:   "wallet",
		Short: "Show the wallet balance",
		Args:  cobra.NoArgs,
		RunE: withApp(flags, func(ctx context.Context, a *app, _ []string) error {
			if err := a.requireSession(); err != nil {
				return err
			}
			if err := a.dispatch(ctx, update.OpenWalletMsg{Currency: currency}); err != nil {
				return err
			}
			printWallet(a, a.model.Wallet)
			return nil
		}),
	}
	cmd.Flags().StringVar(&currency, "currency", "", "currency code (defaults to wallet.currency)")

	send := &cobra.Command{
		Use:   "send <address> <amount>",
		Short: "Send bitcoin to an address",
		Args:  cobra.ExactArgs(2),
		RunE: withApp(flags, func(ctx context.Context, a *app, args []string) error {
			if err := a.requireSession(); err != nil {
				return err
			}
			if err := a.dispatch(ctx, update.OpenWalletMsg{}, update.SendBitcoinMsg{To: args[0], Amount: args[1]}); err != nil {
				return err
			}
			a.status()
			printWallet(a, a.model.Wallet)
			return nil
		}),
	}
	cmd.AddCommand(send)
	return cmd
}

func printWallet(a *app, w model.Wallet) {
	fmt.Fprintf(a.out, "balance: %s %s\n", w.Balance, w.Currency)
	if w.Address != "" {
		fmt.Fprintf(a.out, "address: %s\n", w.Address)
	}
}

func profilesCmd(flags *globalFlags) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "profiles",
		Short: "Browse user profiles",
		Args:  cobra.NoArgs,
		RunE: withApp(flags, func(ctx context.Context, a *app, _ []string) error {
			if err := a.dispatch(ctx, update.OpenProfilesMsg{}); err != nil {
				return err
			}
			for all && a.model.Profiles.HasMore() {
				before := len(a.model.Profiles.Items)
				if err := a.dispatch(ctx, update.MoreProfilesMsg{}); err != nil {
					return err
				}
				if len(a.model.Profiles.Items) == before {
					break
				}
			}
			list := a.model.Profiles
			tw := table(a.out, "ID", "USERNAME", "NAME", "SKILLS")
			for _, p := range list.Items {
				row(tw, p.UserID, p.DisplayName(), p.FullName, len(p.Skills))
			}
			_ = tw.Flush()
			fmt.Fprintf(a.out, "%d of %d\n", len(list.Items), list.Total)
			return nil
		}),
	}
	cmd.Flags().BoolVar(&all, "all", false, "load every page")
	return cmd
}

func profileCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show your own profile",
		Args:  cobra.NoArgs,
		RunE: withApp(flags, func(ctx context.Context, a *app, _ []string) error {
			if err := a.requireSession(); err != nil {
				return err
			}
			if err := a.dispatch(ctx, update.OpenOwnProfileMsg{}); err != nil {
				return err
			}
			printProfile(a.out, a.view, a.model.OwnProfile)
			return nil
		}),
	}

	var (
		fullName, bio, skills, avatar string
		edit                          *cobra.Command
	)
	edit = &cobra.Command{
		Use:   "update",
		Short: "Edit your profile",
		Args:  cobra.NoArgs,
		RunE: withApp(flags, func(ctx context.Context, a *app, _ []string) error {
			if err := a.requireSession(); err != nil {
				return err
			}
			if err := a.dispatch(ctx, update.OpenOwnProfileMsg{}); err != nil {
				return err
			}
			// Unset flags keep the current values.
			cur := a.model.OwnProfile
			u := model.ProfileUpdate{FullName: cur.FullName, Bio: cur.Bio, Skills: cur.Skills, Avatar: cur.Avatar}
			if edit.Flags().Changed("full-name") {
				u.FullName = fullName
			}
			if edit.Flags().Changed("bio") {
				u.Bio = bio
			}
			if edit.Flags().Changed("skills") {
				u.Skills = model.ParseSkills(skills)
			}
			if edit.Flags().Changed("avatar") {
				u.Avatar = avatar
			}
			if err := a.dispatch(ctx, update.UpdateProfileMsg{Update: u}); err != nil {
				return err
			}
			a.status()
			printProfile(a.out, a.view, a.model.OwnProfile)
			return nil
		}),
	}
	edit.Flags().StringVar(&fullName, "full-name", "", "full name")
	edit.Flags().StringVar(&bio, "bio", "", "short biography")
	edit.Flags().StringVar(&skills, "skills", "", "comma separated skills")
	edit.Flags().StringVar(&avatar, "avatar", "", "avatar URL")
	cmd.AddCommand(edit)
	return cmd
}

func freelancerCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "freelancer <user-id>",
		Short: "Show the reviews a freelancer has received",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(flags, func(ctx context.Context, a *app, args []string) error {
			id, err := parseID(args[0], "user id")
			if err != nil {
				return err
			}
			if err := a.dispatch(ctx, update.OpenFreelancerMsg{UserID: id}); err != nil {
				return err
			}
			fr := a.model.Freelancer
			fmt.Fprintf(a.out, "%s (id %d)\n", fr.Username, fr.UserID)
			printReviews(a.out, fr.Reviews)
			return nil
		}),
	}
}

func disputesCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "disputes",
		Short: "List disputes on your tasks",
		Args:  cobra.NoArgs,
		RunE: withApp(flags, func(ctx context.Context, a *app, _ []string) error {
			if err := a.requireSession(); err != nil {
				return err
			}
			if err := a.dispatch(ctx, update.OpenDisputesMsg{}); err != nil {
				return err
			}
			if len(a.model.Disputes) == 0 {
				fmt.Fprintln(a.out, "no disputes")
				return nil
			}
			tw := table(a.out, "ID", "TASK", "STATUS", "OPENED BY")
			for _, d := range a.model.Disputes {
				row(tw, d.ID, d.TaskID, d.Status, d.OpenedBy)
			}
			_ = tw.Flush()
			return nil
		}),
	}
}
