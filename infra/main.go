package main

import (
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"

	"github.com/fintrackhq/ledger-backend/infra/cloudrun"
	"github.com/fintrackhq/ledger-backend/infra/docker"
	"github.com/fintrackhq/ledger-backend/infra/firestore"
	"github.com/fintrackhq/ledger-backend/infra/identity"
	"github.com/fintrackhq/ledger-backend/infra/provider"
)

func main() {
	pulumi.Run(func(ctx *pulumi.Context) error {
		// set default provider with the correct project
		prov, err := provider.SetupDefaultProvider(ctx)
		if err != nil {
			return err
		}

		// enable identity service to allow using firebase
		ident, err := identity.SetupIdentity(ctx, prov)
		if err != nil {
			return err
		}

		// enable firestore, create the database and the ledger indexes
		err = firestore.SetupFirestore(ctx, prov)
		if err != nil {
			return err
		}

		// create docker repo
		repo, err := docker.CreateCloudrunRepo(ctx)
		if err != nil {
			return err
		}

		_, err = cloudrun.SetupCloudRun(ctx, prov, ident, repo)
		if err != nil {
			return err
		}

		return nil
	})
}
