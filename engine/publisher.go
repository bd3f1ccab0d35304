package engine

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	lerrors "github.com/invenia/lambdalayers/internal/errors"
	"github.com/invenia/lambdalayers/registry"
)

type PublishRequest struct {
	// Layer is the layer name to publish a new version of.
	Layer string
	// Description is stored as the version description, usually a version
	// string such as "v1.2.0".
	Description string
	Grant       registry.Grant
}

// Publisher builds a layer, uploads it as a new version and grants access
// to it. Nothing is retried.
type Publisher struct {
	builder *Builder
	client  registry.Client
	logger  logrus.FieldLogger
}

func NewPublisher(builder *Builder, client registry.Client) *Publisher {
	return &Publisher{
		builder: builder,
		client:  client,
		logger:  logrus.StandardLogger(),
	}
}

func (p *Publisher) SetLogger(logger logrus.FieldLogger) {
	p.logger = logger
	p.builder.SetLogger(logger)
}

func (p *Publisher) Publish(ctx context.Context, req PublishRequest) (*registry.PublishedLayerVersion, error) {
	if req.Grant.Principal == "" {
		return nil, lerrors.MissingPermissionTarget()
	}

	result, err := p.builder.Build(ctx)
	if err != nil {
		return nil, err
	}

	log := p.logger.WithField("layer", req.Layer)
	log.Infof("Built package for %s at %s", req.Layer, result.OutputPath)

	content, err := os.ReadFile(result.OutputPath)
	if err != nil {
		return nil, lerrors.NewFilesystemError("read_archive",
			fmt.Sprintf("failed to read %s", result.OutputPath), err)
	}

	published, err := p.client.PublishLayerVersion(ctx, registry.PublishInput{
		LayerName:          req.Layer,
		Description:        req.Description,
		ZipFile:            content,
		CompatibleRuntimes: result.Runtimes,
	})
	if err != nil {
		return nil, err
	}

	versionArn := published.LayerVersionArn
	log.Infof("Published version '%s' of layer '%s' at '%s'", req.Description, req.Layer, versionArn)

	err = p.client.AddLayerVersionPermission(ctx, registry.PermissionInput{
		LayerName:      published.LayerArn,
		VersionNumber:  published.Version,
		Action:         registry.ActionGetLayerVersion,
		StatementID:    registry.PermissionStatementID,
		Principal:      req.Grant.Principal,
		OrganizationID: req.Grant.OrganizationID,
	})
	if err != nil {
		return nil, err
	}

	switch {
	case req.Grant.OrganizationID != "":
		log.Infof("Allowed organization '%s' to access '%s'", req.Grant.OrganizationID, versionArn)
	case req.Grant.Principal == registry.AnyPrincipal:
		log.Infof("Allowed anyone to access '%s'", versionArn)
	default:
		log.Infof("Allowed account '%s' to access '%s'", req.Grant.Principal, versionArn)
	}

	return published, nil
}
