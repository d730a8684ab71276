package dynamo

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/identity-api/internal/domain"
	"github.com/identity-api/internal/pkg/otpcode"
)

// OtpRepo manages one-time passcodes.
// PK: email, SK: purpose — so a single PutItem replaces any prior code for
// the same (email, purpose) pair in one atomic write, and a single
// conditional DeleteItem is the atomic find-and-consume. Table TTL on
// expires_at is hygiene only; Consume re-checks issued_at explicitly.
type OtpRepo struct {
	client    *dynamodb.Client
	tableName string
	ttl       time.Duration
}

func NewOtpRepo(client *dynamodb.Client, tableName string, ttl time.Duration) *OtpRepo {
	return &OtpRepo{client: client, tableName: tableName, ttl: ttl}
}

// Issue generates a fresh code and upserts the record for (email, purpose),
// superseding any live code for that pair.
func (r *OtpRepo) Issue(ctx context.Context, email string, purpose domain.Purpose) (string, error) {
	code, err := otpcode.Generate()
	if err != nil {
		return "", err
	}
	now := time.Now()
	rec := &domain.OtpRecord{
		Email:     domain.NormalizeEmail(email),
		Purpose:   purpose,
		Code:      code,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(r.ttl).Unix(),
	}
	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return "", fmt.Errorf("marshal otp record: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	if err != nil {
		return "", err
	}
	return code, nil
}

// Consume deletes the record for (email, purpose) only if the code matches
// and the record is still within TTL. The condition rides on the delete, so
// two concurrent consumers of the same code can never both succeed.
// No-record, wrong-code and expired all report found=false indistinguishably.
func (r *OtpRepo) Consume(ctx context.Context, email, code string, purpose domain.Purpose) (bool, error) {
	cutoff := time.Now().Add(-r.ttl).Unix()
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           aws.String(r.tableName),
		Key:                 compositeKey("email", domain.NormalizeEmail(email), "purpose", string(purpose)),
		ConditionExpression: aws.String("#c = :code AND #ia > :cutoff"),
		ExpressionAttributeNames: map[string]string{
			"#c":  fieldCode,
			"#ia": fieldIssuedAt,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":code":   &types.AttributeValueMemberS{Value: code},
			":cutoff": &types.AttributeValueMemberN{Value: strconv.FormatInt(cutoff, 10)},
		},
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
