package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/tendant/simple-site/pkg/simplesite"
)

// SiteRepository implements simplesite.SiteRepository on a DynamoDB table
type SiteRepository struct {
	client Client
	table  string
}

// NewSiteRepository creates a site repository backed by the given table.
// An empty table name selects DefaultSitesTable.
func NewSiteRepository(client Client, table string) *SiteRepository {
	if table == "" {
		table = DefaultSitesTable
	}
	return &SiteRepository{client: client, table: table}
}

func (r *SiteRepository) ListByOwner(ctx context.Context, ownerAccountID string) ([]*simplesite.Site, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(r.table),
		IndexName:              aws.String(IndexName),
		KeyConditionExpression: aws.String("gsi1pk = :pk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: ownerKey(ownerAccountID)},
		},
	}

	result := []*simplesite.Site{}
	paginator := dynamodb.NewQueryPaginator(r.client, input)
	for paginator.HasMorePages() {
		out, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to query sites for owner %s: %w", ownerAccountID, err)
		}
		for _, item := range out.Items {
			site, err := decodeSite(item)
			if err != nil {
				return nil, err
			}
			result = append(result, site)
		}
	}
	return result, nil
}

func (r *SiteRepository) GetByID(ctx context.Context, id string) (*simplesite.Site, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.table),
		Key: map[string]types.AttributeValue{
			"pk": &types.AttributeValueMemberS{Value: siteKey(id)},
			"sk": &types.AttributeValueMemberS{Value: metaKey},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get site %s: %w", id, err)
	}
	if len(out.Item) == 0 {
		return nil, simplesite.ErrSiteNotFound
	}
	return decodeSite(out.Item)
}

func (r *SiteRepository) Create(ctx context.Context, ownerAccountID string, req simplesite.CreateSiteRequest) (*simplesite.Site, error) {
	site := simplesite.NewSite(ownerAccountID, req)
	if err := r.put(ctx, site); err != nil {
		return nil, err
	}
	return site, nil
}

func (r *SiteRepository) Update(ctx context.Context, id string, patch simplesite.SitePatch) (*simplesite.Site, error) {
	site, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	site.Apply(patch)
	if err := r.put(ctx, site); err != nil {
		return nil, err
	}
	return site, nil
}

func (r *SiteRepository) put(ctx context.Context, site *simplesite.Site) error {
	item, err := attributevalue.MarshalMap(siteToItem(site))
	if err != nil {
		return fmt.Errorf("failed to marshal site %s: %w", site.ID, err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.table),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("failed to put site %s: %w", site.ID, err)
	}
	return nil
}

func decodeSite(item map[string]types.AttributeValue) (*simplesite.Site, error) {
	var it siteItem
	if err := attributevalue.UnmarshalMap(item, &it); err != nil {
		return nil, fmt.Errorf("failed to unmarshal site item: %w", err)
	}
	return itemToSite(it)
}

// PageRepository implements simplesite.PageRepository on a DynamoDB table
type PageRepository struct {
	client Client
	table  string
}

// NewPageRepository creates a page repository backed by the given table.
// An empty table name selects DefaultPagesTable.
func NewPageRepository(client Client, table string) *PageRepository {
	if table == "" {
		table = DefaultPagesTable
	}
	return &PageRepository{client: client, table: table}
}

func (r *PageRepository) ListBySite(ctx context.Context, siteID string) ([]*simplesite.Page, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(r.table),
		KeyConditionExpression: aws.String("pk = :pk AND begins_with(sk, :sk)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: siteKey(siteID)},
			":sk": &types.AttributeValueMemberS{Value: pageKey("")},
		},
	}

	result := []*simplesite.Page{}
	paginator := dynamodb.NewQueryPaginator(r.client, input)
	for paginator.HasMorePages() {
		out, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to query pages for site %s: %w", siteID, err)
		}
		for _, item := range out.Items {
			page, err := decodePage(item)
			if err != nil {
				return nil, err
			}
			result = append(result, page)
		}
	}
	return result, nil
}

// GetByID resolves a page through the gsi1 index since the base key needs
// the owning site id.
func (r *PageRepository) GetByID(ctx context.Context, id string) (*simplesite.Page, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.table),
		IndexName:              aws.String(IndexName),
		KeyConditionExpression: aws.String("gsi1pk = :pk AND gsi1sk = :sk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: pageKey(id)},
			":sk": &types.AttributeValueMemberS{Value: metaKey},
		},
		Limit: aws.Int32(1),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query page %s: %w", id, err)
	}
	if len(out.Items) == 0 {
		return nil, simplesite.ErrPageNotFound
	}
	return decodePage(out.Items[0])
}

func (r *PageRepository) Create(ctx context.Context, siteID string, req simplesite.CreatePageRequest) (*simplesite.Page, error) {
	page := simplesite.NewPage(siteID, req)
	if err := r.put(ctx, page); err != nil {
		return nil, err
	}
	return page, nil
}

func (r *PageRepository) Update(ctx context.Context, id string, patch simplesite.PagePatch) (*simplesite.Page, error) {
	page, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	page.Apply(patch)
	if err := r.put(ctx, page); err != nil {
		return nil, err
	}
	return page, nil
}

func (r *PageRepository) put(ctx context.Context, page *simplesite.Page) error {
	item, err := attributevalue.MarshalMap(pageToItem(page))
	if err != nil {
		return fmt.Errorf("failed to marshal page %s: %w", page.ID, err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.table),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("failed to put page %s: %w", page.ID, err)
	}
	return nil
}

func decodePage(item map[string]types.AttributeValue) (*simplesite.Page, error) {
	var it pageItem
	if err := attributevalue.UnmarshalMap(item, &it); err != nil {
		return nil, fmt.Errorf("failed to unmarshal page item: %w", err)
	}
	return itemToPage(it)
}
