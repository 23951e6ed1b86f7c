package middleware

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/netrequester/packages/http"
)

const (
	awsAlgorithm = "AWS4-HMAC-SHA256"
	amzDateFmt   = "20060102T150405Z"
	amzStampFmt  = "20060102"
)

var errAWSCredentials = errors.New("AWS access key and secret key are required")

// AWSCredentials holds credentials for AWS Signature Version 4.
type AWSCredentials struct {
	AccessKey    string
	SecretKey    string
	SessionToken string
	Region       string
	Service      string
}

// AWSSigner signs requests with AWS Signature Version 4.
type AWSSigner struct {
	http.BaseMiddleware
	creds AWSCredentials
	now   func() time.Time
}

// AWSSigV4 returns a middleware that signs every request with creds. Signing
// failures abort the call with an encoding error.
func AWSSigV4(creds AWSCredentials) *AWSSigner {
	return &AWSSigner{creds: creds, now: time.Now}
}

func (s *AWSSigner) OnRequest(_ context.Context, req *http.Request) error {
	if s.creds.AccessKey == "" || s.creds.SecretKey == "" {
		return &http.Error{Kind: http.KindEncoding, Cause: errAWSCredentials}
	}
	if req.URL == nil {
		return &http.Error{Kind: http.KindBuildingURL, Cause: errors.New("request has no URL")}
	}

	t := s.now().UTC()
	amzDate := t.Format(amzDateFmt)
	dateStamp := t.Format(amzStampFmt)
	payloadHash := sha256Hex(req.Body)

	signedHeaders := "host;x-amz-content-sha256;x-amz-date"
	canonicalHeaders := fmt.Sprintf("host:%s\nx-amz-content-sha256:%s\nx-amz-date:%s\n",
		req.URL.Host, payloadHash, amzDate)
	if s.creds.SessionToken != "" {
		signedHeaders += ";x-amz-security-token"
		canonicalHeaders += fmt.Sprintf("x-amz-security-token:%s\n", s.creds.SessionToken)
	}

	canonicalURI := req.URL.EscapedPath()
	if canonicalURI == "" {
		canonicalURI = "/"
	}

	canonicalRequest := strings.Join([]string{
		req.Method.String(),
		canonicalURI,
		canonicalQueryString(req.URL.Query()),
		canonicalHeaders,
		signedHeaders,
		payloadHash,
	}, "\n")

	credentialScope := fmt.Sprintf("%s/%s/%s/aws4_request",
		dateStamp, s.creds.Region, s.creds.Service)

	stringToSign := strings.Join([]string{
		awsAlgorithm,
		amzDate,
		credentialScope,
		sha256Hex([]byte(canonicalRequest)),
	}, "\n")

	signingKey := signatureKey(s.creds.SecretKey, dateStamp, s.creds.Region, s.creds.Service)
	signature := hex.EncodeToString(hmacSHA256(signingKey, stringToSign))

	req.SetHeader("X-Amz-Date", amzDate)
	req.SetHeader("X-Amz-Content-Sha256", payloadHash)
	if s.creds.SessionToken != "" {
		req.SetHeader("X-Amz-Security-Token", s.creds.SessionToken)
	}
	req.SetHeader(http.HeaderAuthorization, fmt.Sprintf("%s Credential=%s/%s, SignedHeaders=%s, Signature=%s",
		awsAlgorithm, s.creds.AccessKey, credentialScope, signedHeaders, signature))
	return nil
}

func canonicalQueryString(values url.Values) string {
	if len(values) == 0 {
		return ""
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var pairs []string
	for _, k := range keys {
		vals := append([]string(nil), values[k]...)
		sort.Strings(vals)
		for _, v := range vals {
			pairs = append(pairs, awsEscape(k)+"="+awsEscape(v))
		}
	}
	return strings.Join(pairs, "&")
}

// awsEscape percent-encodes everything but the RFC 3986 unreserved set.
func awsEscape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

func sha256Hex(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

func hmacSHA256(key []byte, data string) []byte {
	h := hmac.New(sha256.New, key)
	h.Write([]byte(data))
	return h.Sum(nil)
}

func signatureKey(secretKey, dateStamp, region, service string) []byte {
	kDate := hmacSHA256([]byte("AWS4"+secretKey), dateStamp)
	kRegion := hmacSHA256(kDate, region)
	kService := hmacSHA256(kRegion, service)
	return hmacSHA256(kService, "aws4_request")
}
