package cognito

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	ci "github.com/aws/aws-sdk-go-v2/service/cognitoidentity"
)

// IdentityAPI is the subset of the identity pool SDK client used by [IdentityPool].
type IdentityAPI interface {
	GetId(ctx context.Context, params *ci.GetIdInput, optFns ...func(*ci.Options)) (*ci.GetIdOutput, error)
	GetCredentialsForIdentity(ctx context.Context, params *ci.GetCredentialsForIdentityInput, optFns ...func(*ci.Options)) (*ci.GetCredentialsForIdentityOutput, error)
}

// IdentityPool implements [CredentialsService] over the identity pool SDK client.
type IdentityPool struct {
	api    IdentityAPI
	poolID string
}

var _ CredentialsService = (*IdentityPool)(nil)

// NewIdentityPool creates an identity pool client for opts.Region and opts.IdentityPoolID.
func NewIdentityPool(ctx context.Context, opts Options) (*IdentityPool, error) {
	if opts.IdentityPoolID == "" {
		return nil, ErrMissingIdentityPool
	}
	cfg, err := loadConfig(ctx, opts.Region)
	if err != nil {
		return nil, err
	}
	return NewIdentityPoolClient(ci.NewFromConfig(cfg), opts.IdentityPoolID), nil
}

// NewIdentityPoolClient wraps an existing SDK client.
func NewIdentityPoolClient(api IdentityAPI, poolID string) *IdentityPool {
	return &IdentityPool{api: api, poolID: poolID}
}

// PoolID returns the identity pool id.
func (p *IdentityPool) PoolID() string {
	return p.poolID
}

func (p *IdentityPool) Credentials(ctx context.Context, identityID string, logins map[string]string) (*ServiceCredentials, error) {
	if identityID == "" {
		out, err := p.api.GetId(ctx, &ci.GetIdInput{
			IdentityPoolId: aws.String(p.poolID),
			Logins:         logins,
		})
		if err != nil {
			return nil, convertError(err)
		}
		identityID = aws.ToString(out.IdentityId)
		if identityID == "" {
			return nil, newServiceError(CodeMissingCredentials, "identity pool returned no identity id")
		}
	}

	out, err := p.api.GetCredentialsForIdentity(ctx, &ci.GetCredentialsForIdentityInput{
		IdentityId: aws.String(identityID),
		Logins:     logins,
	})
	if err != nil {
		return nil, convertError(err)
	}
	if out.Credentials == nil {
		return nil, newServiceError(CodeMissingCredentials, "identity pool returned no credentials")
	}
	if id := aws.ToString(out.IdentityId); id != "" {
		identityID = id
	}
	return &ServiceCredentials{
		IdentityID:      identityID,
		AccessKeyID:     aws.ToString(out.Credentials.AccessKeyId),
		SecretAccessKey: aws.ToString(out.Credentials.SecretKey),
		SessionToken:    aws.ToString(out.Credentials.SessionToken),
		Expiration:      aws.ToTime(out.Credentials.Expiration),
	}, nil
}
