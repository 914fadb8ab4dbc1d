package store

import (
	stderrors "errors"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"

	apperrors "curity-identity-dap/pkg/errors"
)

// translateError maps the AWS errors this DAP's protocol treats as a
// conflict (a failed uniqueness/version precondition, in or out of a
// transaction, and a TransactionConflictException raised by a concurrent
// transaction) to Conflict; every other error surfaces unchanged.
func translateError(err error, message string) error {
	if err == nil {
		return nil
	}
	var conditionFailed *types.ConditionalCheckFailedException
	if stderrors.As(err, &conditionFailed) {
		return apperrors.Conflict(message).WithCause(err)
	}
	var txCanceled *types.TransactionCanceledException
	if stderrors.As(err, &txCanceled) {
		if transactionCanceledByCondition(txCanceled) {
			return apperrors.Conflict(message).WithCause(err)
		}
		return err
	}
	var apiErr smithy.APIError
	if stderrors.As(err, &apiErr) && apiErr.ErrorCode() == "TransactionConflictException" {
		return apperrors.Conflict(message).WithCause(err)
	}
	return err
}

func transactionCanceledByCondition(tce *types.TransactionCanceledException) bool {
	for _, reason := range tce.CancellationReasons {
		if reason.Code != nil && *reason.Code == "ConditionalCheckFailed" {
			return true
		}
	}
	return false
}
