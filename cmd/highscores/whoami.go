package main

import (
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/spf13/cobra"
)

func (a *app) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Print the AWS caller identity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.cfg.Local {
				return errors.New("whoami needs AWS credentials, not available with --local")
			}
			ctx := cmd.Context()
			awsCfg, err := a.awsConfig(ctx)
			if err != nil {
				return err
			}
			id, err := sts.NewFromConfig(awsCfg).GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
			if err != nil {
				return fmt.Errorf("get caller identity: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Account: %s\n", aws.ToString(id.Account))
			fmt.Fprintf(out, "Arn:     %s\n", aws.ToString(id.Arn))
			fmt.Fprintf(out, "UserId:  %s\n", aws.ToString(id.UserId))
			fmt.Fprintf(out, "Region:  %s\n", awsCfg.Region)
			return nil
		},
	}
}
