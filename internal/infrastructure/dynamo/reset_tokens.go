package dynamo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/identity-api/internal/domain"
)

// UsedResetTokenRepo records consumed reset-token ids (jti) so a stolen but
// unexpired token cannot be replayed after a reset already happened.
// Entries carry the token's own expiry as TTL; once the token would have
// expired anyway the record is garbage.
type UsedResetTokenRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewUsedResetTokenRepo(client *dynamodb.Client, tableName string) *UsedResetTokenRepo {
	return &UsedResetTokenRepo{client: client, tableName: tableName}
}

// MarkUsed claims the jti. The conditional put makes first-use win: a second
// call for the same jti fails with domain.ErrConflict.
func (r *UsedResetTokenRepo) MarkUsed(ctx context.Context, jti string, expiresAt time.Time) error {
	_, err := r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item: map[string]types.AttributeValue{
			"jti":        &types.AttributeValueMemberS{Value: jti},
			"expires_at": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", expiresAt.Unix())},
		},
		ConditionExpression: aws.String("attribute_not_exists(jti)"),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return fmt.Errorf("reset token already used: %w", domain.ErrConflict)
		}
		return err
	}
	return nil
}
