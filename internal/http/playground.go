package http

// GraphiQL served on GET /graphql for interactive use.
const playgroundHTML = `<!DOCTYPE html>
<html>
  <head>
    <title>hpdb GraphQL</title>
    <style>
      body { margin: 0; }
      #graphiql { height: 100vh; }
    </style>
    <link rel="stylesheet" href="https://unpkg.com/graphiql/graphiql.min.css" />
  </head>
  <body>
    <div id="graphiql">Loading...</div>
    <script src="https://unpkg.com/react@17/umd/react.production.min.js"></script>
    <script src="https://unpkg.com/react-dom@17/umd/react-dom.production.min.js"></script>
    <script src="https://unpkg.com/graphiql/graphiql.min.js"></script>
    <script>
      ReactDOM.render(
        React.createElement(GraphiQL, {
          fetcher: GraphiQL.createFetcher({ url: window.location.href }),
        }),
        document.getElementById('graphiql'),
      );
    </script>
  </body>
</html>
`
